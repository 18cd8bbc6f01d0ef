package assessment

// Subscale tags follow the scoring key of the collaborator service:
// depression {3,5,10,13,16,17,21}, anxiety {2,4,7,9,15,19,20},
// stress {1,6,8,11,12,14,18}.
const (
	SubscaleDepression = "depression"
	SubscaleAnxiety    = "anxiety"
	SubscaleStress     = "stress"
)

// DASS21 is the 21-item Depression Anxiety Stress Scale.
var DASS21 = Definition{
	Kind:      KindDASS21,
	DomainMax: 3,
	AnswerLabels: []string{
		"اصلاً", "گاهی", "اغلب", "خیلی زیاد",
	},
	Items: []Item{
		{ID: 1, Prompt: "در گذشته یک هفته، من سخت بیان احساساتم کردم", Subscale: SubscaleStress},
		{ID: 2, Prompt: "در گذشته یک هفته، من شرایطی را تجربه کردم که باعث خشکی دهانم شد", Subscale: SubscaleAnxiety},
		{ID: 3, Prompt: "در گذشته یک هفته، نتوانستم احساس مثبتی داشته باشم", Subscale: SubscaleDepression},
		{ID: 4, Prompt: "در گذشته یک هفته، مشکل تنفسی داشتم", Subscale: SubscaleAnxiety},
		{ID: 5, Prompt: "در گذشته یک هفته، سخت ابتکار عمل پیدا کردم", Subscale: SubscaleDepression},
		{ID: 6, Prompt: "در گذشته یک هفته، تمایل داشتم روی موقعیت‌ها بیش از حد واکنش نشان دهم", Subscale: SubscaleStress},
		{ID: 7, Prompt: "در گذشته یک هفته، لرزش داشتم", Subscale: SubscaleAnxiety},
		{ID: 8, Prompt: "در گذشته یک هفته، احساس کردم انرژی زیادی صرف کرده‌ام", Subscale: SubscaleStress},
		{ID: 9, Prompt: "در گذشته یک هفته، نگران موقعیت‌هایی بودم که ممکن است پانیک کنم", Subscale: SubscaleAnxiety},
		{ID: 10, Prompt: "در گذشته یک هفته، احساس کردم چیزی برای لذت بردن ندارم", Subscale: SubscaleDepression},
		{ID: 11, Prompt: "در گذشته یک هفته، خودم را آشفته دیدم", Subscale: SubscaleStress},
		{ID: 12, Prompt: "در گذشته یک هفته، سخت آرام شدم", Subscale: SubscaleStress},
		{ID: 13, Prompt: "در گذشته یک هفته، غمگین و افسرده بودم", Subscale: SubscaleDepression},
		{ID: 14, Prompt: "در گذشته یک هفته، نسبت به هر چیزی که مرا از ادامه کاری که انجام می‌دادم باز می‌داشت بی‌تابی کردم", Subscale: SubscaleStress},
		{ID: 15, Prompt: "در گذشته یک هفته، احساس ترس کردم", Subscale: SubscaleAnxiety},
		{ID: 16, Prompt: "در گذشته یک هفته، احساس کردم آینده‌ای ندارم", Subscale: SubscaleDepression},
		{ID: 17, Prompt: "در گذشته یک هفته، احساس کردم زندگی بی‌معناست", Subscale: SubscaleDepression},
		{ID: 18, Prompt: "در گذشته یک هفته، تحریک‌پذیر بودم", Subscale: SubscaleStress},
		{ID: 19, Prompt: "در گذشته یک هفته، تپش قلب داشتم", Subscale: SubscaleAnxiety},
		{ID: 20, Prompt: "در گذشته یک هفته، بدون دلیل مشخص ترسیدم", Subscale: SubscaleAnxiety},
		{ID: 21, Prompt: "در گذشته یک هفته، احساس کردم زندگی ارزشی ندارد", Subscale: SubscaleDepression},
	},
}

// PHQ9 is the 9-item Patient Health Questionnaire.
var PHQ9 = Definition{
	Kind:      KindPHQ9,
	DomainMax: 3,
	AnswerLabels: []string{
		"اصلاً", "چند روز", "بیش از نیمی از روزها", "تقریباً هر روز",
	},
	Items: []Item{
		{ID: 1, Prompt: "در دو هفته گذشته، علاقه یا لذت کمی به انجام کارها داشتم", Subscale: SubscaleDepression},
		{ID: 2, Prompt: "در دو هفته گذشته، احساس ناراحتی، افسردگی یا ناامیدی کردم", Subscale: SubscaleDepression},
		{ID: 3, Prompt: "در دو هفته گذشته، در به خواب رفتن یا خواب ماندن مشکل داشتم، یا بیش از حد خوابیدم", Subscale: SubscaleDepression},
		{ID: 4, Prompt: "در دو هفته گذشته، احساس خستگی یا کمبود انرژی داشتم", Subscale: SubscaleDepression},
		{ID: 5, Prompt: "در دو هفته گذشته، کم‌اشتها بودم یا پرخوری کردم", Subscale: SubscaleDepression},
		{ID: 6, Prompt: "در دو هفته گذشته، نسبت به خودم احساس بدی داشتم یا فکر کردم شکست‌خورده‌ام", Subscale: SubscaleDepression},
		{ID: 7, Prompt: "در دو هفته گذشته، در تمرکز روی کارها مانند مطالعه یا تماشای تلویزیون مشکل داشتم", Subscale: SubscaleDepression},
		{ID: 8, Prompt: "در دو هفته گذشته، آنقدر آهسته حرکت یا صحبت کردم که دیگران متوجه شدند، یا برعکس بی‌قرار بودم", Subscale: SubscaleDepression},
		{ID: 9, Prompt: "در دو هفته گذشته، فکر کردم بهتر بود می‌مردم یا به خودم آسیب می‌رساندم", Subscale: SubscaleDepression},
	},
}

// ByKind returns the definition for the given instrument kind.
func ByKind(kind Kind) (*Definition, bool) {
	switch kind {
	case KindDASS21:
		return &DASS21, true
	case KindPHQ9:
		return &PHQ9, true
	default:
		return nil, false
	}
}
