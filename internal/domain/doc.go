// Package domain models points of interest and the crowd estimation engine
// that turns them into heatmap data.
//
// # Places
//
// A [Place] is a venue with time-invariant attributes: location, category,
// peak-hour profile and base popularity. Places either come from a live
// point-of-interest API (real name and coordinates, synthetic rating, peak
// hours and popularity) or from the synthetic demo generator. The [DataQuality]
// tag records which, so callers never have to guess from missing fields.
//
// Peak-hour profiles by category:
//
//	bar         21 22 23 0 1
//	restaurant  12 13 18 19 20
//	cafe        7 8 9 10 11
//	club        23 0 1 2 3
//	gym         6 7 17 18 19
//	shopping    12 13 14 15 16
//
// # Crowd score
//
// [Estimator.Estimate] maps a place and an hour of day to a 0–100 score:
//
//	multiplier = 0.3                      base
//	           = U[0.8, 1.0)              hour is a peak hour
//	           = U[0.5, 0.7)              some peak hour is within 1 (not circular)
//	multiplier *= 1.2                     Sun/Fri/Sat and type is bar, club or restaurant
//	score      = floor(min(100, basePopularity * multiplier))
//
// The near-peak distance is plain integer distance on 0..23, so 23 and 0 are
// 23 apart. Weekend days are Sunday, Friday and Saturday. Both are kept as the
// product currently behaves.
//
// # Heatmap
//
// [Estimator.Generate] expands each place into floor(score/10)+3 points
// jittered by up to ±0.0004° per axis, each weighted score*U[0.5, 1.0).
//
// # Tiers
//
// [Describe] buckets a score into display tiers:
//
//	>= 80 Very Busy   #ef4444
//	>= 60 Busy        #f97316
//	>= 40 Moderate    #eab308
//	>= 20 Quiet       #22c55e
//	else  Very Quiet  #10b981
//
// # Determinism
//
// The estimator reads the weekday from an injected [clockwork.Clock] and draws
// from an injected [RandSource]. Tests pass a fake clock and a fixed source to
// get reproducible scores.
package domain
