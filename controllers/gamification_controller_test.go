package controllers

import (
	"testing"
	"time"
)

func TestLevelForXP(t *testing.T) {
	cases := []struct {
		xp    int
		level int
	}{
		{0, 1},
		{99, 1},
		{100, 2},
		{250, 3},
		{1000, 11},
	}
	for _, c := range cases {
		if got := levelForXP(c.xp); got != c.level {
			t.Errorf("levelForXP(%d) = %d, want %d", c.xp, got, c.level)
		}
	}
}

func TestNextStreak(t *testing.T) {
	day := 24 * time.Hour
	now := time.Date(2025, 6, 10, 15, 0, 0, 0, time.UTC)

	if got := nextStreak(0, time.Time{}, now); got != 1 {
		t.Errorf("Expected first activity to start streak at 1, got %d", got)
	}
	if got := nextStreak(3, now.Add(-2*time.Hour), now); got != 3 {
		t.Errorf("Expected same-day activity to keep streak, got %d", got)
	}
	if got := nextStreak(3, now.Add(-day), now); got != 4 {
		t.Errorf("Expected consecutive-day activity to extend streak, got %d", got)
	}
	if got := nextStreak(7, now.Add(-3*day), now); got != 1 {
		t.Errorf("Expected a gap to reset streak to 1, got %d", got)
	}
}

func TestHasBadge(t *testing.T) {
	badges := []string{"First Steps", "Perfectionist"}
	if !hasBadge(badges, "First Steps") {
		t.Error("Expected badge to be found")
	}
	if hasBadge(badges, "Quiz Master") {
		t.Error("Expected missing badge to not be found")
	}
	if hasBadge(nil, "First Steps") {
		t.Error("Expected nil badge list to contain nothing")
	}
}

func TestValidateQuestion(t *testing.T) {
	valid := QuestionInput{
		Question:      "What is the capital of France?",
		Options:       []string{"Paris", "London", "Berlin", "Madrid"},
		CorrectAnswer: 0,
	}
	if err := validateQuestion(valid); err != nil {
		t.Errorf("Expected valid question to pass, got %v", err)
	}

	empty := valid
	empty.Question = ""
	if err := validateQuestion(empty); err == nil {
		t.Error("Expected empty question text to fail")
	}

	short := valid
	short.Options = []string{"Paris"}
	if err := validateQuestion(short); err == nil {
		t.Error("Expected single-option question to fail")
	}

	blank := valid
	blank.Options = []string{"Paris", "  "}
	if err := validateQuestion(blank); err == nil {
		t.Error("Expected blank option to fail")
	}

	outOfRange := valid
	outOfRange.CorrectAnswer = 4
	if err := validateQuestion(outOfRange); err == nil {
		t.Error("Expected out-of-range correct answer to fail")
	}
}
