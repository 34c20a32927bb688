package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/michaelberns/wtt/internal/actions"
	"github.com/michaelberns/wtt/internal/apiclient"
	"github.com/michaelberns/wtt/internal/filters"
	"github.com/michaelberns/wtt/internal/notify"
	"github.com/michaelberns/wtt/models"
)

const defaultBaseURL = "http://localhost:8080/api"

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: wtt <command> [flags]

Commands:
  sign-up          register an account
  sign-in          sign in by name and email
  jobs             list jobs with optional filters
  job              show one job with its offers
  post             post a new job (clients only)
  edit             edit a job (creator only)
  delete           delete a job (creator only)
  offer            submit an offer on a job (labour only)
  accept           accept an offer (creator only)
  reject           reject an offer (creator only)
  request-close    request job close (accepted worker only)
  close            close a job (creator only)
  reject-close     reject a pending close request (creator only)
  my-jobs          list created jobs and jobs in progress
  notifications    show notifications, -watch to poll
  read             mark a notification as read

Environment:
  API_BASE_URL     gateway base URL (default %s)
  WTT_USER         user id for commands that act on behalf of a user
`, defaultBaseURL)
}

func main() {
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	baseURL := os.Getenv("API_BASE_URL")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	api := apiclient.New(baseURL)
	acts := actions.New(api)
	ctx := context.Background()

	var err error
	switch os.Args[1] {
	case "sign-up":
		err = cmdSignUp(ctx, acts, os.Args[2:])
	case "sign-in":
		err = cmdSignIn(ctx, acts, os.Args[2:])
	case "jobs":
		err = cmdJobs(ctx, api, os.Args[2:])
	case "job":
		err = cmdJob(ctx, api, os.Args[2:])
	case "post":
		err = cmdPost(ctx, acts, os.Args[2:])
	case "edit":
		err = cmdEdit(ctx, api, acts, os.Args[2:])
	case "delete":
		err = cmdDelete(ctx, api, acts, os.Args[2:])
	case "offer":
		err = cmdOffer(ctx, api, acts, os.Args[2:])
	case "accept":
		err = cmdOfferDecision(ctx, api, acts, os.Args[2:], true)
	case "reject":
		err = cmdOfferDecision(ctx, api, acts, os.Args[2:], false)
	case "request-close":
		err = cmdClose(ctx, api, acts, os.Args[2:], "request")
	case "close":
		err = cmdClose(ctx, api, acts, os.Args[2:], "approve")
	case "reject-close":
		err = cmdClose(ctx, api, acts, os.Args[2:], "reject")
	case "my-jobs":
		err = cmdMyJobs(ctx, api, os.Args[2:])
	case "notifications":
		err = cmdNotifications(ctx, api, os.Args[2:])
	case "read":
		err = cmdRead(ctx, api, os.Args[2:])
	case "help", "-h", "--help":
		usage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		usage()
		os.Exit(1)
	}
	if err != nil {
		log.Fatal(err)
	}
}

// resume восстанавливает сессию из флага -user или WTT_USER
func resume(ctx context.Context, acts *actions.Actions, userID string) error {
	if userID == "" {
		userID = os.Getenv("WTT_USER")
	}
	if userID == "" {
		return fmt.Errorf("user id required: pass -user or set WTT_USER")
	}
	_, err := acts.Resume(ctx, userID)
	return err
}

func cmdSignUp(ctx context.Context, acts *actions.Actions, args []string) error {
	fs := flag.NewFlagSet("sign-up", flag.ExitOnError)
	name := fs.String("name", "", "display name")
	email := fs.String("email", "", "email address")
	role := fs.String("role", "", "account role: client or labour")
	fs.Parse(args)

	r, err := models.ParseRole(*role)
	if err != nil {
		return err
	}
	sess, err := acts.SignUp(ctx, *name, *email, r)
	if err != nil {
		return err
	}
	fmt.Printf("Signed up: %s (%s)\nUser id: %s\n", sess.Name, sess.Role, sess.UserID)
	return nil
}

func cmdSignIn(ctx context.Context, acts *actions.Actions, args []string) error {
	fs := flag.NewFlagSet("sign-in", flag.ExitOnError)
	name := fs.String("name", "", "display name")
	email := fs.String("email", "", "email address")
	fs.Parse(args)

	sess, err := acts.SignIn(ctx, *name, *email)
	if err != nil {
		return err
	}
	fmt.Printf("Signed in: %s (%s)\nUser id: %s\n", sess.Name, sess.Role, sess.UserID)
	return nil
}

func parseFilterFlags(fs *flag.FlagSet) func() (filters.JobFilters, error) {
	minBudget := fs.Float64("min", -1, "minimum budget")
	maxBudget := fs.Float64("max", -1, "maximum budget")
	query := fs.String("q", "", "text search")
	location := fs.String("location", "", "location substring")
	skills := fs.String("skills", "", "comma-separated skills")
	status := fs.String("status", "all", "job status: all, open, reserved or closed")

	return func() (filters.JobFilters, error) {
		f := filters.Clear()
		if *minBudget >= 0 {
			v := *minBudget
			f.MinBudget = &v
		}
		if *maxBudget >= 0 {
			v := *maxBudget
			f.MaxBudget = &v
		}
		f.Query = *query
		f.Location = *location
		if *skills != "" {
			for _, s := range strings.Split(*skills, ",") {
				if s = strings.TrimSpace(s); s != "" {
					f.Skills = append(f.Skills, s)
				}
			}
		}
		if *status != "" && *status != "all" {
			st, err := models.ParseJobStatus(*status)
			if err != nil {
				return f, err
			}
			f.Status = filters.Status(st)
		}
		return f, nil
	}
}

func cmdJobs(ctx context.Context, api *apiclient.Client, args []string) error {
	fs := flag.NewFlagSet("jobs", flag.ExitOnError)
	onMap := fs.Bool("map", false, "only jobs with coordinates")
	build := parseFilterFlags(fs)
	fs.Parse(args)

	f, err := build()
	if err != nil {
		return err
	}

	var jobs []models.Job
	if *onMap {
		jobs, err = api.GetJobsForMap(ctx, f)
	} else {
		jobs, err = api.GetJobs(ctx, f)
	}
	if err != nil {
		return err
	}

	if len(jobs) == 0 {
		fmt.Println("No jobs found")
		return nil
	}
	for _, j := range jobs {
		printJob(j)
	}
	return nil
}

func printJob(j models.Job) {
	fmt.Printf("%s  [%s]  %.2f  %s\n", j.ID, j.Status, j.Budget, j.Title)
	if j.Location != "" {
		fmt.Printf("    location: %s\n", j.Location)
	}
	if j.AcceptedBy != "" {
		fmt.Printf("    accepted by: %s\n", j.AcceptedBy)
	}
	if j.CloseRequestedBy != "" {
		fmt.Printf("    close requested by: %s\n", j.CloseRequestedBy)
	}
}

func cmdJob(ctx context.Context, api *apiclient.Client, args []string) error {
	fs := flag.NewFlagSet("job", flag.ExitOnError)
	id := fs.String("id", "", "job id")
	fs.Parse(args)

	job, err := api.GetJob(ctx, *id)
	if err != nil {
		return err
	}
	printJob(job)
	fmt.Println("    " + job.Description)

	offers, err := api.GetOffers(ctx, job.ID)
	if err != nil {
		return err
	}
	if len(offers) == 0 {
		fmt.Println("No offers")
		return nil
	}
	fmt.Println("Offers:")
	for _, o := range offers {
		fmt.Printf("  %s  [%s]  %.2f  from %s  %s\n", o.ID, o.Status, o.ProposedPrice, o.UserID, o.Message)
	}
	return nil
}

func cmdPost(ctx context.Context, acts *actions.Actions, args []string) error {
	fs := flag.NewFlagSet("post", flag.ExitOnError)
	user := fs.String("user", "", "acting user id")
	title := fs.String("title", "", "job title")
	desc := fs.String("description", "", "job description")
	location := fs.String("location", "", "job location")
	budget := fs.Float64("budget", 0, "job budget")
	video := fs.String("video", "", "video URL")
	images := fs.String("images", "", "comma-separated image URLs")
	fs.Parse(args)

	if err := resume(ctx, acts, *user); err != nil {
		return err
	}

	in := apiclient.NewJob{
		Title:       *title,
		Description: *desc,
		Location:    *location,
		Budget:      *budget,
		Video:       *video,
		Images:      []string{},
	}
	if *images != "" {
		in.Images = strings.Split(*images, ",")
	}

	job, err := acts.PostJob(ctx, in)
	if err != nil {
		return err
	}
	fmt.Printf("Posted job %s\n", job.ID)
	return nil
}

func cmdEdit(ctx context.Context, api *apiclient.Client, acts *actions.Actions, args []string) error {
	fs := flag.NewFlagSet("edit", flag.ExitOnError)
	user := fs.String("user", "", "acting user id")
	id := fs.String("id", "", "job id")
	title := fs.String("title", "", "new title")
	desc := fs.String("description", "", "new description")
	location := fs.String("location", "", "new location")
	budget := fs.Float64("budget", -1, "new budget")
	fs.Parse(args)

	if err := resume(ctx, acts, *user); err != nil {
		return err
	}
	job, err := api.GetJob(ctx, *id)
	if err != nil {
		return err
	}

	var upd apiclient.JobUpdate
	if *title != "" {
		upd.Title = title
	}
	if *desc != "" {
		upd.Description = desc
	}
	if *location != "" {
		upd.Location = location
	}
	if *budget >= 0 {
		upd.Budget = budget
	}

	updated, err := acts.EditJob(ctx, job, upd)
	if err != nil {
		return err
	}
	fmt.Printf("Updated job %s\n", updated.ID)
	return nil
}

func cmdDelete(ctx context.Context, api *apiclient.Client, acts *actions.Actions, args []string) error {
	fs := flag.NewFlagSet("delete", flag.ExitOnError)
	user := fs.String("user", "", "acting user id")
	id := fs.String("id", "", "job id")
	fs.Parse(args)

	if err := resume(ctx, acts, *user); err != nil {
		return err
	}
	job, err := api.GetJob(ctx, *id)
	if err != nil {
		return err
	}
	if err := acts.DeleteJob(ctx, job); err != nil {
		return err
	}
	fmt.Printf("Deleted job %s\n", job.ID)
	return nil
}

func cmdOffer(ctx context.Context, api *apiclient.Client, acts *actions.Actions, args []string) error {
	fs := flag.NewFlagSet("offer", flag.ExitOnError)
	user := fs.String("user", "", "acting user id")
	jobID := fs.String("job", "", "job id")
	price := fs.Float64("price", 0, "proposed price")
	message := fs.String("message", "", "message to the client")
	fs.Parse(args)

	if err := resume(ctx, acts, *user); err != nil {
		return err
	}
	job, err := api.GetJob(ctx, *jobID)
	if err != nil {
		return err
	}
	offer, err := acts.SubmitOffer(ctx, job, *price, *message)
	if err != nil {
		return err
	}
	fmt.Printf("Submitted offer %s\n", offer.ID)
	return nil
}

func cmdOfferDecision(ctx context.Context, api *apiclient.Client, acts *actions.Actions, args []string, accept bool) error {
	name := "reject"
	if accept {
		name = "accept"
	}
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	user := fs.String("user", "", "acting user id")
	jobID := fs.String("job", "", "job id")
	offerID := fs.String("offer", "", "offer id")
	fs.Parse(args)

	if err := resume(ctx, acts, *user); err != nil {
		return err
	}
	job, err := api.GetJob(ctx, *jobID)
	if err != nil {
		return err
	}
	offers, err := api.GetOffers(ctx, job.ID)
	if err != nil {
		return err
	}
	var offer models.Offer
	for _, o := range offers {
		if o.ID == *offerID {
			offer = o
			break
		}
	}
	if offer.ID == "" {
		return fmt.Errorf("offer %s not found on job %s", *offerID, job.ID)
	}

	if accept {
		job, offers, err = acts.AcceptOffer(ctx, job, offer)
	} else {
		job, offers, err = acts.RejectOffer(ctx, job, offer)
	}
	if err != nil {
		return err
	}

	printJob(job)
	for _, o := range offers {
		fmt.Printf("  %s  [%s]  %.2f  from %s\n", o.ID, o.Status, o.ProposedPrice, o.UserID)
	}
	return nil
}

func cmdClose(ctx context.Context, api *apiclient.Client, acts *actions.Actions, args []string, mode string) error {
	fs := flag.NewFlagSet(mode+"-close", flag.ExitOnError)
	user := fs.String("user", "", "acting user id")
	jobID := fs.String("job", "", "job id")
	fs.Parse(args)

	if err := resume(ctx, acts, *user); err != nil {
		return err
	}
	job, err := api.GetJob(ctx, *jobID)
	if err != nil {
		return err
	}

	switch mode {
	case "request":
		job, err = acts.RequestClose(ctx, job)
	case "approve":
		job, err = acts.ApproveClose(ctx, job)
	case "reject":
		job, err = acts.RejectClose(ctx, job)
	}
	if err != nil {
		return err
	}
	printJob(job)
	return nil
}

func cmdMyJobs(ctx context.Context, api *apiclient.Client, args []string) error {
	fs := flag.NewFlagSet("my-jobs", flag.ExitOnError)
	user := fs.String("user", "", "acting user id")
	fs.Parse(args)

	userID := *user
	if userID == "" {
		userID = os.Getenv("WTT_USER")
	}
	if userID == "" {
		return fmt.Errorf("user id required: pass -user or set WTT_USER")
	}

	uj, err := api.GetUserJobs(ctx, userID)
	if err != nil {
		return err
	}

	fmt.Println("Created:")
	for _, j := range uj.Created {
		printJob(j)
	}
	fmt.Println("Working on:")
	for _, j := range uj.WorkingOn {
		printJob(j)
	}
	return nil
}

func cmdNotifications(ctx context.Context, api *apiclient.Client, args []string) error {
	fs := flag.NewFlagSet("notifications", flag.ExitOnError)
	user := fs.String("user", "", "acting user id")
	watch := fs.Bool("watch", false, "keep polling for updates")
	fs.Parse(args)

	userID := *user
	if userID == "" {
		userID = os.Getenv("WTT_USER")
	}
	if userID == "" {
		return fmt.Errorf("user id required: pass -user or set WTT_USER")
	}

	poller := notify.NewPoller(api, userID)
	poller.OnUpdate = printSnapshot

	if !*watch {
		if err := poller.Refresh(ctx); err != nil {
			return err
		}
		return nil
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	poller.Run(ctx)
	return nil
}

func printSnapshot(s notify.Snapshot) {
	fmt.Printf("Unread: %d\n", s.UnreadCount)
	for _, n := range s.Notifications {
		mark := " "
		if !n.Read {
			mark = "*"
		}
		fmt.Printf("%s %s  %s\n", mark, n.ID, n.Message)
	}
}

func cmdRead(ctx context.Context, api *apiclient.Client, args []string) error {
	fs := flag.NewFlagSet("read", flag.ExitOnError)
	user := fs.String("user", "", "acting user id")
	id := fs.String("id", "", "notification id")
	fs.Parse(args)

	userID := *user
	if userID == "" {
		userID = os.Getenv("WTT_USER")
	}
	if userID == "" {
		return fmt.Errorf("user id required: pass -user or set WTT_USER")
	}

	if err := api.MarkNotificationRead(ctx, *id, userID); err != nil {
		return err
	}
	fmt.Printf("Marked %s as read\n", *id)
	return nil
}
