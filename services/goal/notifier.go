// Package goalsvc runs the scheduled weekly-goal check and congratulates
// users who hit their study target.
package goalsvc

import (
	"context"
	"net/mail"
	"time"

	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"

	"github.com/trezcool/somo/core"
	"github.com/trezcool/somo/core/store"
	"github.com/trezcool/somo/core/task"
	"github.com/trezcool/somo/core/user"
)

const congratsSubject = "You hit your weekly study goal!"

type Notifier struct {
	conf    *core.Config
	usrSvc  user.Service
	stores  *store.Manager
	mailSvc core.EmailService
	logger  core.Logger
	cron    *cron.Cron

	nowFunc func() time.Time // mockable
}

func NewNotifier(
	conf *core.Config,
	usrSvc user.Service,
	stores *store.Manager,
	mailSvc core.EmailService,
	logger core.Logger,
) *Notifier {
	return &Notifier{
		conf:    conf,
		usrSvc:  usrSvc,
		stores:  stores,
		mailSvc: mailSvc,
		logger:  logger,
		cron:    cron.New(cron.WithSeconds(), cron.WithLocation(time.UTC)),
		nowFunc: func() time.Time { return time.Now().UTC() },
	}
}

// Start schedules the periodic check per conf.Goal.CheckSchedule.
func (n *Notifier) Start() error {
	if _, err := n.cron.AddFunc(n.conf.Goal.CheckSchedule, n.CheckAll); err != nil {
		return errors.Wrap(err, "scheduling weekly-goal check")
	}
	n.cron.Start()
	return nil
}

// Stop waits for a running check to finish.
func (n *Notifier) Stop() {
	ctx := n.cron.Stop()
	<-ctx.Done()
}

// CheckAll runs the goal check for every registered user.
func (n *Notifier) CheckAll() {
	users, err := n.usrSvc.QueryAll()
	if err != nil {
		n.logger.Error("weekly-goal check: querying users", err)
		return
	}

	ctx := context.Background()
	for _, usr := range users {
		if !usr.IsActive {
			continue
		}
		if err := n.check(ctx, usr); err != nil {
			n.logger.Error("weekly-goal check: "+usr.ID, err)
		}
	}
}

// check congratulates at most once per ISO week: the settings record the
// Monday of the last congratulated week.
func (n *Notifier) check(ctx context.Context, usr user.User) error {
	s, err := n.stores.Get(ctx, usr.ID)
	if err != nil {
		return errors.Wrap(err, "loading study data")
	}

	now := n.nowFunc()
	tree := s.Tree()
	goal := tree.Settings.WeeklyStudyGoalHours
	if goal <= 0 {
		return nil
	}

	weekStart := task.WeekStart(now)
	if !tree.Settings.LastWeekGoalMetAt.Before(weekStart) {
		return nil // already congratulated this week
	}

	progress := task.WeeklyGoalProgress(tree.Tasks, goal, now)
	if progress.Percentage < 100 {
		return nil
	}

	if err := s.Dispatch(store.MarkWeekGoalMet{At: weekStart}); err != nil {
		return errors.Wrap(err, "recording goal met")
	}
	n.sendCongratsMail(usr, progress, goal)
	return nil
}

func (n *Notifier) sendCongratsMail(usr user.User, progress task.GoalProgress, goal float64) {
	data := struct {
		User  user.User
		Hours float64
		Goal  float64
	}{
		User:  usr,
		Hours: progress.Total.Hours(),
		Goal:  goal,
	}

	msg := &core.EmailMessage{
		To:           []mail.Address{{Name: usr.Name, Address: usr.Email}},
		Subject:      n.conf.AppName + " " + congratsSubject,
		TemplateName: "weekly-goal-met",
		TemplateData: data,
	}
	n.mailSvc.SendMessages(msg)
}
