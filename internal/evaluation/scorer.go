package evaluation

import "math"

// Score computes the result of an evaluation. Any critical failure zeroes
// the score; otherwise the score is the share of applicable checklist
// criteria rated Conforme, as a percentage with two decimals.
func Score(checklist map[ChecklistKey]ChecklistItem, ncg map[NcgKey]NcgItem) ScoreResult {
	for _, key := range NcgKeys {
		item, ok := ncg[key]
		if ok && item.Occurred != nil && *item.Occurred == RatingNaoConforme {
			return ScoreResult{
				FinalScore:              0,
				AchievedPoints:          0,
				ApplicableCriteriaCount: len(ChecklistKeys),
				IsCriticalFailure:       true,
			}
		}
	}

	var achieved, applicable int
	for _, key := range ChecklistKeys {
		item, ok := checklist[key]
		if !ok || item.Rating == nil {
			applicable++
			continue
		}
		if *item.Rating != RatingNA {
			applicable++
		}
		if *item.Rating == RatingConforme {
			achieved++
		}
	}

	final := 100.0
	if applicable > 0 {
		final = round2(float64(achieved) / float64(applicable) * 100)
	}

	return ScoreResult{
		FinalScore:              final,
		AchievedPoints:          achieved,
		ApplicableCriteriaCount: applicable,
	}
}

// ScoreForm is Score applied to a whole form.
func ScoreForm(form FormData) ScoreResult {
	return Score(form.ChecklistItems, form.NcgItems)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
