package srs

import (
	"time"

	"github.com/phrazzld/scry-trainer/internal/domain"
)

// next applies one rating to a copy of current. Input has already been validated.
// Without a last review timestamp the recorded ElapsedDays is taken as the
// time since the previous review.
func (s *defaultService) next(
	current *domain.CardSchedule,
	rating domain.Rating,
	reviewedAt time.Time,
) *domain.CardSchedule {
	c := current.Clone()

	var elapsed float64
	var elapsedWhole int
	if c.LastReview != nil {
		elapsed, elapsedWhole = elapsedDays(*c.LastReview, reviewedAt)
	} else if c.State != domain.StateNew {
		elapsed, elapsedWhole = float64(c.ElapsedDays), c.ElapsedDays
	}

	var delay time.Duration
	switch c.State {
	case domain.StateNew:
		delay = s.fromNew(c, rating)
		c.Reps = 0
	case domain.StateLearning, domain.StateRelearning:
		delay = s.fromLearning(c, rating, elapsed)
	default:
		delay = s.fromReview(c, rating, elapsed, elapsedWhole)
	}

	c.Reps++
	c.ElapsedDays = elapsedWhole
	c.ScheduledDays = wholeDays(delay)
	c.Due = reviewedAt.Add(delay)
	c.LastReview = &reviewedAt
	c.UpdatedAt = reviewedAt

	return c
}

// fromNew seeds memory state on first exposure. The card always enters
// Learning; when the rating would skip the remaining steps it waits one day.
func (s *defaultService) fromNew(c *domain.CardSchedule, rating domain.Rating) time.Duration {
	c.Stability = s.model.initStability(rating)
	c.Difficulty = s.model.initDifficulty(rating, true)
	c.State = domain.StateLearning
	c.Step = 0

	steps := s.params.LearningSteps
	delay, graduate := advanceStep(c, rating, steps)
	if graduate {
		c.Step = len(steps)
		return newCardEasyDelay
	}
	return delay
}

// fromLearning handles Learning and Relearning. Reviews inside the same day
// use short-term stability; after a day or more the long-term formulas apply.
func (s *defaultService) fromLearning(
	c *domain.CardSchedule,
	rating domain.Rating,
	elapsed float64,
) time.Duration {
	if elapsed < 1 {
		c.Stability = s.model.shortTermStability(c.Stability, rating)
	} else {
		r := s.model.retrievability(elapsed, c.Stability)
		if rating == domain.Again {
			c.Stability = s.model.forgetStability(c.Difficulty, c.Stability, r)
		} else {
			c.Stability = s.model.recallStability(c.Difficulty, c.Stability, r, rating)
		}
	}
	c.Difficulty = s.model.nextDifficulty(c.Difficulty, rating)

	steps := s.params.LearningSteps
	if c.State == domain.StateRelearning {
		steps = s.params.RelearningSteps
	}

	delay, graduate := advanceStep(c, rating, steps)
	if graduate {
		return s.graduate(c)
	}
	return delay
}

// fromReview handles a card in the Review state. A same-day recall leaves
// stability unchanged; Again always lapses into Relearning.
func (s *defaultService) fromReview(
	c *domain.CardSchedule,
	rating domain.Rating,
	elapsed float64,
	elapsedWhole int,
) time.Duration {
	r := s.model.retrievability(elapsed, c.Stability)

	if rating == domain.Again {
		c.Lapses++
		c.Stability = s.model.forgetStability(c.Difficulty, c.Stability, r)
		c.Difficulty = s.model.nextDifficulty(c.Difficulty, rating)
		c.State = domain.StateRelearning
		c.Step = 0
		return s.params.RelearningSteps[0]
	}

	if elapsedWhole > 0 {
		c.Stability = s.model.recallStability(c.Difficulty, c.Stability, r, rating)
	}
	c.Difficulty = s.model.nextDifficulty(c.Difficulty, rating)

	return s.graduate(c)
}

// graduate moves the card into Review and returns the whole-day interval
// derived from its stability.
func (s *defaultService) graduate(c *domain.CardSchedule) time.Duration {
	c.State = domain.StateReview
	c.Step = 0
	days := s.model.nextInterval(c.Stability, s.params.DesiredRetention, s.params.MaximumInterval)
	return time.Duration(days) * day
}

// advanceStep moves through (re)learning steps. It reports graduate when the
// rating completes the steps: Easy at any point, Good on the last step or
// after the steps are exhausted.
func advanceStep(c *domain.CardSchedule, rating domain.Rating, steps []time.Duration) (time.Duration, bool) {
	step := c.Step

	switch rating {
	case domain.Again:
		c.Step = 0
		return steps[0], false

	case domain.Hard:
		if step >= len(steps) {
			return steps[len(steps)-1], false
		}
		if step == 0 {
			if len(steps) == 1 {
				return steps[0] * 3 / 2, false
			}
			return (steps[0] + steps[1]) / 2, false
		}
		return steps[step], false

	case domain.Good:
		nextStep := step + 1
		if nextStep >= len(steps) {
			return 0, true
		}
		c.Step = nextStep
		return steps[nextStep], false

	default:
		return 0, true
	}
}

// orderIntervals enforces Hard <= Good < Easy among outcomes that landed in
// Review, keeping Easy within the maximum interval.
func (s *defaultService) orderIntervals(
	outcomes map[domain.Rating]*domain.CardSchedule,
	reviewedAt time.Time,
) {
	hard, good, easy := outcomes[domain.Hard], outcomes[domain.Good], outcomes[domain.Easy]

	if hard.State == domain.StateReview && good.State == domain.StateReview &&
		hard.ScheduledDays > good.ScheduledDays {
		setInterval(hard, good.ScheduledDays, reviewedAt)
	}

	if good.State == domain.StateReview && easy.State == domain.StateReview &&
		easy.ScheduledDays <= good.ScheduledDays {
		days := good.ScheduledDays + 1
		if days > s.params.MaximumInterval {
			days = s.params.MaximumInterval
		}
		setInterval(easy, days, reviewedAt)
	}
}

func setInterval(c *domain.CardSchedule, days int, reviewedAt time.Time) {
	c.ScheduledDays = days
	c.Due = reviewedAt.Add(time.Duration(days) * day)
}
