package domain

// CrowdTier is the display label and color for a score band.
type CrowdTier struct {
	Label string `json:"label"`
	Color string `json:"color"`
}

// TierBand is one row of the threshold table.
type TierBand struct {
	MinScore int `json:"minScore"`
	CrowdTier
}

// tierBands is ordered high to low; the first band whose MinScore is met wins.
var tierBands = []TierBand{
	{MinScore: 80, CrowdTier: CrowdTier{Label: "Very Busy", Color: "#ef4444"}},
	{MinScore: 60, CrowdTier: CrowdTier{Label: "Busy", Color: "#f97316"}},
	{MinScore: 40, CrowdTier: CrowdTier{Label: "Moderate", Color: "#eab308"}},
	{MinScore: 20, CrowdTier: CrowdTier{Label: "Quiet", Color: "#22c55e"}},
}

var bottomTier = CrowdTier{Label: "Very Quiet", Color: "#10b981"}

// Describe maps a crowd score to its tier. Scores above 100 land in the top
// band and negative scores in the bottom band.
func Describe(score int) CrowdTier {
	for _, b := range tierBands {
		if score >= b.MinScore {
			return b.CrowdTier
		}
	}
	return bottomTier
}

// Tiers returns the full table, high to low, ending with the catch-all band.
func Tiers() []TierBand {
	out := make([]TierBand, 0, len(tierBands)+1)
	out = append(out, tierBands...)
	return append(out, TierBand{MinScore: 0, CrowdTier: bottomTier})
}

// GradientStop is an RGBA color stop for the heatmap layer.
type GradientStop [4]uint8

// HeatmapGradient returns the color ramp the map client renders the point
// cloud with, from empty to very busy.
func HeatmapGradient() []GradientStop {
	return []GradientStop{
		{0, 255, 0, 0},
		{34, 197, 94, 150},
		{234, 179, 8, 180},
		{249, 115, 22, 210},
		{239, 68, 68, 255},
	}
}

// ClampScore limits a score to 0..100.
func ClampScore(score int) int {
	return max(0, min(maxCrowdScore, score))
}
