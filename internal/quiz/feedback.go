package quiz

// Feedback band messages, lowest to highest.
const (
	FeedbackTier0 = "Do You Know?🤨"
	FeedbackTier1 = "You Know!!😊"
	FeedbackTier2 = "Excellent🙌"
	FeedbackTier3 = "Master!!🙇"
)

// Feedback maps score/total into one of four fixed bands: [0,40] → tier 0,
// (40,75] → tier 1, (75,99] → tier 2, above → tier 3. A total of zero maps
// to tier 0 so an empty session never divides by zero.
func Feedback(score, total int) string {
	if total == 0 {
		return FeedbackTier0
	}
	pct := float64(score) / float64(total) * 100
	switch {
	case pct <= 40:
		return FeedbackTier0
	case pct <= 75:
		return FeedbackTier1
	case pct <= 99:
		return FeedbackTier2
	default:
		return FeedbackTier3
	}
}
