package sim

import (
	"fmt"

	"github.com/hamdel-app/hamdel/internal/collab"
)

// DASS-21 scoring key: item numbers per subscale. Subscale sums are doubled
// to align with the full DASS-42 severity bands.
var (
	dassDepressionItems = []int{3, 5, 10, 13, 16, 17, 21}
	dassAnxietyItems    = []int{2, 4, 7, 9, 15, 19, 20}
	dassStressItems     = []int{1, 6, 8, 11, 12, 14, 18}
)

const (
	levelNormal          = "عادی"
	levelMild            = "خفیف"
	levelModerate        = "متوسط"
	levelSevere          = "شدید"
	levelExtremelySevere = "بسیار شدید"

	phqMinimal        = "حداقل"
	phqMild           = "خفیف"
	phqModerate       = "متوسط"
	phqModeratelySevr = "نسبتاً شدید"
	phqSevere         = "شدید"
)

// ScoreDASS21 computes the three doubled subscale sums and their severity
// labels from a complete 21-item response map keyed by item number.
func ScoreDASS21(responses map[int]int) collab.ScoreResult {
	depression := 2 * sumItems(responses, dassDepressionItems)
	anxiety := 2 * sumItems(responses, dassAnxietyItems)
	stress := 2 * sumItems(responses, dassStressItems)

	result := collab.ScoreResult{
		DepressionScore: depression,
		AnxietyScore:    anxiety,
		StressScore:     stress,
		DepressionLevel: dassLevel(depression, 9, 13, 20, 27),
		AnxietyLevel:    dassLevel(anxiety, 7, 9, 14, 19),
		StressLevel:     dassLevel(stress, 14, 18, 25, 33),
	}
	// The DASS-21 narrative rides under ai_analysis; only PHQ-9 uses the
	// plain analysis key.
	result.AIAnalysis = fmt.Sprintf(
		"نتایج شما: افسردگی در سطح %s، اضطراب در سطح %s و استرس در سطح %s قرار دارد.",
		result.DepressionLevel, result.AnxietyLevel, result.StressLevel,
	)
	result.Recommendations = dassRecommendations(result)
	return result
}

// ScorePHQ9 computes the PHQ-9 total and its severity label from a complete
// 9-item response map keyed by item number.
func ScorePHQ9(responses map[int]int) collab.ScoreResult {
	total := 0
	for _, v := range responses {
		total += v
	}

	var severity string
	switch {
	case total <= 4:
		severity = phqMinimal
	case total <= 9:
		severity = phqMild
	case total <= 14:
		severity = phqModerate
	case total <= 19:
		severity = phqModeratelySevr
	default:
		severity = phqSevere
	}

	result := collab.ScoreResult{
		TotalScore:    total,
		SeverityLevel: severity,
		Analysis: fmt.Sprintf(
			"نمره کلی شما %d است که نشان‌دهنده علائم افسردگی در سطح %s است.",
			total, severity,
		),
	}
	result.Recommendations = phqRecommendations(total)
	return result
}

func sumItems(responses map[int]int, items []int) int {
	sum := 0
	for _, item := range items {
		sum += responses[item]
	}
	return sum
}

// dassLevel maps a doubled subscale sum onto the standard severity bands.
// The cutoffs are the upper bound of each band below the extreme one.
func dassLevel(score, normal, mild, moderate, severe int) string {
	switch {
	case score <= normal:
		return levelNormal
	case score <= mild:
		return levelMild
	case score <= moderate:
		return levelModerate
	case score <= severe:
		return levelSevere
	default:
		return levelExtremelySevere
	}
}

func dassRecommendations(r collab.ScoreResult) []string {
	recs := []string{
		"خواب منظم و کافی داشته باشید.",
		"فعالیت بدنی روزانه را در برنامه خود بگنجانید.",
	}
	if r.DepressionLevel != levelNormal {
		recs = append(recs, "برنامه روزانه خود را با فعالیت‌های لذت‌بخش کوچک پر کنید.")
	}
	if r.AnxietyLevel != levelNormal {
		recs = append(recs, "تمرین‌های تنفس عمیق و آرام‌سازی را امتحان کنید.")
	}
	if r.StressLevel != levelNormal {
		recs = append(recs, "زمان‌هایی برای استراحت بین مطالعه در نظر بگیرید.")
	}
	if r.DepressionLevel == levelSevere || r.DepressionLevel == levelExtremelySevere ||
		r.AnxietyLevel == levelSevere || r.AnxietyLevel == levelExtremelySevere {
		recs = append(recs, "توصیه می‌شود با مشاور یا روان‌شناس مدرسه صحبت کنید.")
	}
	return recs
}

func phqRecommendations(total int) []string {
	recs := []string{"ارتباط خود را با دوستان و خانواده حفظ کنید."}
	switch {
	case total <= 4:
		recs = append(recs, "وضعیت شما خوب است؛ عادت‌های سالم فعلی را ادامه دهید.")
	case total <= 14:
		recs = append(recs, "ثبت روزانه احساسات می‌تواند به شناخت بهتر وضعیت شما کمک کند.")
	default:
		recs = append(recs, "توصیه می‌شود در اسرع وقت با مشاور یا روان‌شناس صحبت کنید.")
	}
	return recs
}
