package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/spf13/cobra"

	"github.com/hamdel-app/hamdel/internal/assessment"
	"github.com/hamdel-app/hamdel/internal/collab"
	"github.com/hamdel-app/hamdel/internal/config"
	"github.com/hamdel-app/hamdel/internal/gamification"
	"github.com/hamdel-app/hamdel/internal/logging"
	"github.com/hamdel-app/hamdel/internal/session"
	"github.com/hamdel-app/hamdel/internal/tokenstore"
	"github.com/hamdel-app/hamdel/internal/tracker"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the interactive session",
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(cmd.Context())
	},
}

func run(ctx context.Context) error {
	logging.Setup()
	cfg := config.Load()
	if flagBaseURL != "" {
		cfg.BaseURL = flagBaseURL
	}
	if flagToken != "" {
		cfg.TokenPath = flagToken
	}

	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:         cfg.SentryDSN,
			Environment: cfg.AppEnv,
		}); err == nil {
			defer sentry.Flush(2 * time.Second)
		}
	}

	client := collab.NewClient(cfg.BaseURL, cfg.HTTPTimeout)
	tokens, err := tokenstore.New(cfg.TokenPath)
	if err != nil {
		return fmt.Errorf("token store: %w", err)
	}

	ctrl := session.NewController(client, tokens, nil)
	ctrl.Start(ctx)

	fmt.Println("همدل — برای دیدن دستورات help را وارد کنید.")
	render(ctrl.Snapshot())

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "quit" || line == "exit" {
			return nil
		}
		dispatch(ctx, ctrl, line)
		render(ctrl.Snapshot())
	}
}

func dispatch(ctx context.Context, ctrl *session.Controller, line string) {
	fields := strings.Fields(line)
	cmd, args := fields[0], fields[1:]

	var err error
	switch cmd {
	case "help":
		printHelp()
	case "login":
		if len(args) < 2 {
			fmt.Println("usage: login <email> <password>")
			return
		}
		err = ctrl.Login(ctx, args[0], args[1])
	case "register":
		if len(args) < 4 {
			fmt.Println("usage: register <email> <password> <age> <full name...>")
			return
		}
		age, _ := strconv.Atoi(args[2])
		err = ctrl.Register(ctx, collab.RegisterRequest{
			Email:           args[0],
			Password:        args[1],
			ConfirmPassword: args[1],
			Age:             age,
			FullName:        strings.Join(args[3:], " "),
			StudentLevel:    "high-school",
			ConsentGiven:    true,
		})
	case "logout":
		ctrl.Logout()
	case "home":
		err = ctrl.BackToDashboard()
	case "dass":
		err = ctrl.OpenQuestionnaire(assessment.KindDASS21)
	case "phq":
		err = ctrl.OpenQuestionnaire(assessment.KindPHQ9)
	case "a":
		if len(args) != 2 {
			fmt.Println("usage: a <item> <value>")
			return
		}
		item, _ := strconv.Atoi(args[0])
		value, _ := strconv.Atoi(args[1])
		err = ctrl.RecordAnswer(item, value)
	case "submit":
		_, err = ctrl.SubmitQuestionnaire(ctx)
	case "mood":
		if len(args) < 1 {
			fmt.Println("usage: mood <1-5> [note...]")
			return
		}
		if navErr := ctrl.OpenMoodTracker(); navErr != nil {
			err = navErr
			break
		}
		level, _ := strconv.Atoi(args[0])
		err = ctrl.SaveMood(ctx, level, strings.Join(args[1:], " "))
	case "sleep":
		if len(args) < 2 {
			fmt.Println("usage: sleep <hours> <quality 1-5> [note...]")
			return
		}
		if navErr := ctrl.OpenSleepTracker(); navErr != nil {
			err = navErr
			break
		}
		hours, _ := strconv.ParseFloat(args[0], 64)
		quality, _ := strconv.Atoi(args[1])
		err = ctrl.SaveSleep(ctx, hours, quality, strings.Join(args[2:], " "))
	case "reflect":
		if len(args) < 1 {
			fmt.Println("usage: reflect <text...>")
			return
		}
		if navErr := ctrl.OpenReflection(); navErr != nil {
			err = navErr
			break
		}
		err = ctrl.SaveReflection(ctx, strings.Join(args, " "))
	case "chat":
		if len(args) < 1 {
			fmt.Println("usage: chat <message...>")
			return
		}
		if navErr := ctrl.OpenChat(); navErr != nil {
			err = navErr
			break
		}
		err = ctrl.SendChat(ctx, strings.Join(args, " "))
	case "plan":
		err = ctrl.OpenPlan()
	case "history":
		err = ctrl.OpenHistory()
	case "refresh":
		ctrl.RefreshAll(ctx)
	default:
		fmt.Println("دستور ناشناخته:", cmd)
	}

	if err != nil {
		fmt.Println("!", err)
	}
}

func printHelp() {
	fmt.Print(`commands:
  login <email> <password>            sign in
  register <email> <pass> <age> <name> create an account
  logout                              sign out and clear local data
  home                                back to the dashboard
  dass | phq                          start a questionnaire
  a <item> <value>                    answer an item
  submit                              submit the questionnaire
  mood <1-5> [note]                   save today's mood
  sleep <hours> <quality> [note]      save today's sleep
  reflect <text>                      save today's reflection
  chat <message>                      talk to همدل
  plan | history | refresh            views
  quit
`)
}

func render(snap session.Snapshot) {
	if snap.Error != "" {
		fmt.Println("⚠", snap.Error)
	}

	switch snap.State {
	case session.StateLanding:
		fmt.Println("برای شروع وارد شوید: login یا register")
	case session.StateAuthenticating:
		fmt.Println("در حال ورود...")
	case session.StateDashboard:
		if snap.User != nil {
			have, need := gamification.Progress(snap.Gamification)
			fmt.Printf("سلام %s | سطح %d | %d/%d XP | نشان‌ها: %s\n",
				snap.User.FullName, snap.Gamification.Level, have, need,
				strings.Join(snap.Gamification.Badges, "، "))
		}
	case session.StateTakingQuestionnaire:
		def, ok := assessment.ByKind(snap.ActiveKind)
		if !ok {
			return
		}
		fmt.Printf("%s — %d از %d پاسخ داده شده\n", def.Kind, snap.Answered[snap.ActiveKind], def.Size())
		for _, item := range def.Items {
			fmt.Printf("  %2d. %s\n", item.ID, item.Prompt)
		}
		fmt.Println("گزینه‌ها:", strings.Join(def.AnswerLabels, " / "))
	case session.StateReviewingResult:
		for kind, result := range snap.Results {
			printResult(string(kind), result)
		}
	case session.StateTrackingMood:
		printEntries("خلق و خو", snap.MoodLog)
	case session.StateTrackingSleep:
		printEntries("خواب", snap.SleepLog)
	case session.StateReflecting:
		printEntries("تأمل روزانه", snap.ReflectionLog)
	case session.StateChatting:
		for _, turn := range snap.Conversation {
			prefix := "شما"
			if turn.Sender == "assistant" {
				prefix = "همدل"
			}
			fmt.Printf("  [%s] %s\n", prefix, turn.Text)
		}
	case session.StateViewingPlan:
		if snap.Plan != nil {
			fmt.Println("عادت‌های روزانه:")
			for _, h := range snap.Plan.DailyHabits {
				fmt.Println("  -", h)
			}
			fmt.Println("اهداف هفتگی:")
			for _, g := range snap.Plan.WeeklyGoals {
				fmt.Println("  -", g)
			}
		}
		for _, j := range snap.Journeys {
			fmt.Printf("مسیر %s: %s\n", j.Name, strings.Join(j.Tasks, "، "))
		}
	case session.StateViewingHistory:
		for _, record := range snap.History {
			fmt.Printf("  %s  %s\n", record.CompletedAt.Format("2006-01-02"), record.Type)
		}
	}
}

func printResult(kind string, r *collab.ScoreResult) {
	fmt.Println("نتیجه", kind)
	if kind == string(assessment.KindDASS21) {
		fmt.Printf("  افسردگی: %d (%s)\n", r.DepressionScore, r.DepressionLevel)
		fmt.Printf("  اضطراب:  %d (%s)\n", r.AnxietyScore, r.AnxietyLevel)
		fmt.Printf("  استرس:   %d (%s)\n", r.StressScore, r.StressLevel)
	} else {
		fmt.Printf("  نمره کل: %d (%s)\n", r.TotalScore, r.SeverityLevel)
	}
	switch {
	case r.Analysis != "":
		fmt.Println(" ", r.Analysis)
	case r.AIAnalysis != "":
		fmt.Println(" ", r.AIAnalysis)
	}
	for _, rec := range r.Recommendations {
		fmt.Println("  •", rec)
	}
}

func printEntries(title string, entries []tracker.Entry) {
	fmt.Println(title + ":")
	for _, e := range entries {
		switch {
		case e.Text != "":
			fmt.Printf("  %s  %s\n", e.Date, e.Text)
		case e.Hours > 0:
			fmt.Printf("  %s  %.1f ساعت، کیفیت %d  %s\n", e.Date, e.Hours, e.Quality, e.Note)
		default:
			fmt.Printf("  %s  سطح %d  %s\n", e.Date, e.MoodLevel, e.Note)
		}
	}
}
