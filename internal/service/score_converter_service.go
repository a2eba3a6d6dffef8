package service

import "fmt"

// listeningScaleTable maps a correct-answer count (index 0..100) to the
// scaled Listening score (5-495). Fixed conversion chart, not a formula.
var listeningScaleTable = [101]int{
	5, 5, 5, 5, 5, 5, 5, 10, 15, 20, // 0-9
	25, 30, 35, 40, 45, 50, 55, 60, 65, 70, // 10-19
	75, 80, 85, 90, 95, 100, 105, 110, 115, 120, // 20-29
	125, 130, 135, 140, 145, 150, 155, 160, 165, 170, // 30-39
	175, 180, 185, 190, 195, 200, 205, 210, 215, 220, // 40-49
	225, 230, 235, 240, 245, 250, 255, 260, 265, 270, // 50-59
	275, 280, 285, 290, 295, 300, 305, 310, 315, 320, // 60-69
	325, 330, 335, 340, 345, 350, 355, 360, 365, 370, // 70-79
	375, 380, 385, 390, 395, 400, 405, 410, 415, 420, // 80-89
	425, 430, 435, 440, 445, 450, 460, 470, 480, 490, // 90-99
	495, // 100
}

// readingScaleTable maps a correct-answer count (index 0..100) to the
// scaled Reading score (5-495).
var readingScaleTable = [101]int{
	5, 5, 5, 5, 5, 10, 15, 20, 25, 30, // 0-9
	35, 40, 45, 50, 55, 60, 65, 70, 75, 80, // 10-19
	85, 90, 95, 100, 105, 110, 115, 120, 125, 130, // 20-29
	135, 140, 145, 150, 155, 160, 165, 170, 175, 180, // 30-39
	185, 190, 195, 200, 205, 210, 215, 220, 225, 230, // 40-49
	235, 240, 245, 250, 255, 260, 265, 270, 275, 280, // 50-59
	285, 290, 295, 300, 305, 310, 315, 320, 325, 330, // 60-69
	335, 340, 345, 350, 355, 360, 365, 370, 375, 380, // 70-79
	385, 390, 395, 400, 405, 410, 415, 420, 425, 430, // 80-89
	435, 440, 445, 450, 455, 460, 465, 470, 480, 490, // 90-99
	495, // 100
}

// swScaleBand maps a minimum raw AI score (0-100) to a Writing/Speaking
// scaled score (0-200). Bands are ordered highest first.
type swScaleBand struct {
	minRaw float64
	scaled int
}

var swScaleBands = []swScaleBand{
	{95, 200}, {90, 190}, {85, 180}, {80, 170}, {75, 160},
	{70, 150}, {65, 140}, {60, 130}, {55, 120}, {50, 110},
	{45, 100}, {40, 90}, {35, 80}, {30, 70}, {25, 60},
	{20, 50}, {15, 40}, {10, 30}, {5, 20},
}

type ScoreConverterService interface {
	ConvertListeningScore(correctCount int) (int, error)
	ConvertReadingScore(correctCount int) (int, error)
	ConvertWritingScore(rawScore float64) (int, error)
	ConvertSpeakingScore(rawScore float64) (int, error)
}

type scoreConverterService struct{}

func NewScoreConverterService() ScoreConverterService {
	return &scoreConverterService{}
}

func (s *scoreConverterService) ConvertListeningScore(correctCount int) (int, error) {
	if correctCount < 0 || correctCount > 100 {
		return 0, fmt.Errorf("listening correct count %d is out of range 0-100", correctCount)
	}
	return listeningScaleTable[correctCount], nil
}

func (s *scoreConverterService) ConvertReadingScore(correctCount int) (int, error) {
	if correctCount < 0 || correctCount > 100 {
		return 0, fmt.Errorf("reading correct count %d is out of range 0-100", correctCount)
	}
	return readingScaleTable[correctCount], nil
}

func (s *scoreConverterService) ConvertWritingScore(rawScore float64) (int, error) {
	return convertSWScore("writing", rawScore)
}

func (s *scoreConverterService) ConvertSpeakingScore(rawScore float64) (int, error) {
	return convertSWScore("speaking", rawScore)
}

func convertSWScore(skill string, rawScore float64) (int, error) {
	if rawScore < 0 || rawScore > 100 {
		return 0, fmt.Errorf("%s raw score %.2f is out of range 0-100", skill, rawScore)
	}
	for _, band := range swScaleBands {
		if rawScore >= band.minRaw {
			return band.scaled, nil
		}
	}
	if rawScore > 0 {
		return 10, nil
	}
	return 0, nil
}
