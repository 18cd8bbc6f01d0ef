package sim

import "strings"

// Reply produces the rule-based assistant answer for a user message. The
// stored memory personalizes the reply when a name is known.
func Reply(message string, memory map[string]interface{}) string {
	name := ""
	if memory != nil {
		if v, ok := memory["name"].(string); ok {
			name = v
		}
	}

	greeting := ""
	if name != "" {
		greeting = name + " عزیز، "
	}

	lower := strings.ToLower(message)
	switch {
	case containsAny(lower, "سلام", "درود", "hello", "hi"):
		if name != "" {
			return "سلام " + name + " عزیز! خوشحالم که اینجایی. امروز چه احساسی داری؟"
		}
		return "سلام! خوشحالم که اینجایی. امروز چه احساسی داری؟"
	case containsAny(lower, "غمگین", "ناراحت", "افسرده", "گریه"):
		return greeting + "متأسفم که احساس ناراحتی می‌کنی. صحبت کردن درباره احساسات قدم مهمی است. دوست داری بگویی چه چیزی باعث این احساس شده؟"
	case containsAny(lower, "اضطراب", "استرس", "نگران", "مضطرب"):
		return greeting + "اضطراب احساس سختی است. یک تمرین ساده: چهار ثانیه نفس بکش، چهار ثانیه نگه دار و چهار ثانیه بیرون بده. دوست داری درباره نگرانی‌ات بیشتر صحبت کنیم؟"
	case containsAny(lower, "خواب", "بی‌خوابی", "خسته"):
		return greeting + "خواب خوب پایه سلامت روان است. سعی کن هر شب ساعت مشخصی بخوابی و قبل از خواب از صفحه نمایش فاصله بگیری."
	case containsAny(lower, "تنها", "تنهایی"):
		return greeting + "احساس تنهایی سخت است، اما تو تنها نیستی. ارتباط با یک دوست یا عضو خانواده، حتی کوتاه، می‌تواند کمک کند."
	case containsAny(lower, "خوشحال", "خوب", "عالی"):
		return greeting + "چه خبر خوبی! خوشحالم که حالت خوب است. چه چیزی باعث این احساس خوب شده؟"
	case containsAny(lower, "امتحان", "درس", "مدرسه", "کنکور"):
		return greeting + "فشار درسی طبیعی است. برنامه‌ریزی و استراحت‌های کوتاه بین مطالعه کمک زیادی می‌کند. با خودت مهربان باش."
	default:
		return greeting + "ممنون که با من در میان گذاشتی. من اینجا هستم تا گوش بدهم. دوست داری بیشتر توضیح بدهی؟"
	}
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
