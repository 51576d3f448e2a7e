package tests

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/trezcool/somo/core/task"
)

func Test_taskApi_CRUDAndTimer(t *testing.T) {
	app := setup(t)
	_, token := verifiedUserToken(t)

	today := time.Now().UTC().Format("2006-01-02")

	var tsk task.StudyTask
	body := marchallObj(t, task.NewTask{Title: "Revise algebra", Date: today, Priority: 2, Category: "revision"})
	do(t, app, http.MethodPost, "/v1/tasks", token, body, http.StatusCreated, &tsk)
	if tsk.ID == "" || tsk.IsCompleted {
		t.Fatalf("unexpected task: %+v", tsk)
	}

	// validation
	do(t, app, http.MethodPost, "/v1/tasks", token,
		marchallObj(t, task.NewTask{Title: "No date", Priority: 1, Category: "revision"}), http.StatusBadRequest, nil)

	// timer: start, double-start rejected, stop
	taskPath := "/v1/tasks/" + tsk.ID
	do(t, app, http.MethodPost, taskPath+"/start", token, nil, http.StatusOK, &tsk)
	if tsk.ActiveTimeLogID == "" {
		t.Fatal("timer not running")
	}
	do(t, app, http.MethodPost, taskPath+"/start", token, nil, http.StatusBadRequest, nil)
	// reset before decoding: active_time_log_id is omitempty, so a stale value
	// would survive unmarshalling into the reused struct
	tsk = task.StudyTask{}
	do(t, app, http.MethodPost, taskPath+"/stop", token, nil, http.StatusOK, &tsk)
	if tsk.ActiveTimeLogID != "" {
		t.Fatal("timer still running")
	}
	if len(tsk.TimeLogs) != 1 {
		t.Fatalf("len(TimeLogs) = %d; want 1", len(tsk.TimeLogs))
	}
	do(t, app, http.MethodPost, taskPath+"/stop", token, nil, http.StatusBadRequest, nil)

	// manual logs
	now := time.Now().UTC()
	do(t, app, http.MethodPost, taskPath+"/logs", token,
		marchallObj(t, TimeLogRequestBody{Start: now.Add(-2 * time.Hour), End: now.Add(-time.Hour)}), http.StatusOK, &tsk)
	if len(tsk.TimeLogs) != 2 {
		t.Fatalf("len(TimeLogs) = %d; want 2", len(tsk.TimeLogs))
	}

	// end before start rejected
	do(t, app, http.MethodPost, taskPath+"/logs", token,
		marchallObj(t, TimeLogRequestBody{Start: now, End: now.Add(-time.Hour)}), http.StatusBadRequest, nil)

	// edit & delete a log
	logID := tsk.TimeLogs[1].ID
	do(t, app, http.MethodPut, fmt.Sprintf("%s/logs/%s", taskPath, logID), token,
		marchallObj(t, TimeLogRequestBody{Start: now.Add(-3 * time.Hour), End: now.Add(-time.Hour)}), http.StatusOK, &tsk)
	do(t, app, http.MethodDelete, fmt.Sprintf("%s/logs/%s", taskPath, logID), token, nil, http.StatusOK, &tsk)
	if len(tsk.TimeLogs) != 1 {
		t.Fatalf("len(TimeLogs) = %d; want 1", len(tsk.TimeLogs))
	}
	// deleting an unknown log is a no-op
	do(t, app, http.MethodDelete, fmt.Sprintf("%s/logs/%s", taskPath, logID), token, nil, http.StatusOK, &tsk)
	if len(tsk.TimeLogs) != 1 {
		t.Fatalf("len(TimeLogs) = %d; want 1", len(tsk.TimeLogs))
	}

	// complete & delete
	completed := true
	do(t, app, http.MethodPut, taskPath, token, marchallObj(t, task.UpdateTask{IsCompleted: &completed}), http.StatusOK, &tsk)
	if !tsk.IsCompleted {
		t.Error("task not completed")
	}
	do(t, app, http.MethodDelete, taskPath, token, nil, http.StatusNoContent, nil)
	do(t, app, http.MethodDelete, taskPath, token, nil, http.StatusNotFound, nil)
}

// TimeLogRequestBody mirrors the time log payload for tests.
type TimeLogRequestBody struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

func Test_taskApi_queryByDateRange(t *testing.T) {
	app := setup(t)
	_, token := verifiedUserToken(t)

	mkTask := func(title, date string) {
		body := marchallObj(t, task.NewTask{Title: title, Date: date, Priority: 1, Category: "revision"})
		do(t, app, http.MethodPost, "/v1/tasks", token, body, http.StatusCreated, nil)
	}
	mkTask("t1", "2024-05-01")
	mkTask("t2", "2024-05-03")
	mkTask("t3", "2024-05-10")

	var tasks []task.StudyTask
	do(t, app, http.MethodGet, "/v1/tasks", token, nil, http.StatusOK, &tasks)
	if len(tasks) != 3 {
		t.Fatalf("len(tasks) = %d; want 3", len(tasks))
	}

	do(t, app, http.MethodGet, "/v1/tasks?from=2024-05-02&to=2024-05-09", token, nil, http.StatusOK, &tasks)
	if len(tasks) != 1 || tasks[0].Title != "t2" {
		t.Fatalf("unexpected filtered tasks: %+v", tasks)
	}

	do(t, app, http.MethodGet, "/v1/tasks?from=2024-06-01", token, nil, http.StatusOK, &tasks)
	if len(tasks) != 0 {
		t.Fatalf("len(tasks) = %d; want 0", len(tasks))
	}
}

func Test_taskApi_analytics(t *testing.T) {
	app := setup(t)
	_, token := verifiedUserToken(t)

	today := time.Now().UTC().Format("2006-01-02")

	var tsk task.StudyTask
	do(t, app, http.MethodPost, "/v1/tasks", token,
		marchallObj(t, task.NewTask{Title: "Revise", Date: today, Priority: 1, Category: "revision"}), http.StatusCreated, &tsk)

	now := time.Now().UTC()
	do(t, app, http.MethodPost, "/v1/tasks/"+tsk.ID+"/logs", token,
		marchallObj(t, TimeLogRequestBody{Start: now.Add(-90 * time.Minute), End: now.Add(-30 * time.Minute)}), http.StatusOK, nil)

	var days []task.DayBucket
	do(t, app, http.MethodGet, "/v1/analytics/daily", token, nil, http.StatusOK, &days)
	if len(days) != 7 {
		t.Fatalf("len(days) = %d; want 7", len(days))
	}
	var total time.Duration
	for _, d := range days {
		total += d.Total
	}
	if total != time.Hour {
		t.Errorf("total = %v; want %v", total, time.Hour)
	}

	var weeks []task.WeekBucket
	do(t, app, http.MethodGet, "/v1/analytics/weekly", token, nil, http.StatusOK, &weeks)
	if len(weeks) == 0 {
		t.Error("no weekly buckets")
	}

	var months []task.MonthBucket
	do(t, app, http.MethodGet, "/v1/analytics/monthly", token, nil, http.StatusOK, &months)
	if len(months) != 6 {
		t.Errorf("len(months) = %d; want 6", len(months))
	}

	// goal progress against the default (unset) goal
	var progress task.GoalProgress
	do(t, app, http.MethodGet, "/v1/analytics/goal", token, nil, http.StatusOK, &progress)
	if progress.Total != time.Hour {
		t.Errorf("progress.Total = %v; want %v", progress.Total, time.Hour)
	}
	if progress.Percentage != 0 {
		t.Errorf("progress.Percentage = %v; want 0 (no goal set)", progress.Percentage)
	}
}

func Test_settingsApi(t *testing.T) {
	app := setup(t)
	_, token := verifiedUserToken(t)

	var settings struct {
		WeeklyStudyGoalHours float64 `json:"weekly_study_goal_hours"`
	}
	do(t, app, http.MethodGet, "/v1/settings", token, nil, http.StatusOK, &settings)
	if settings.WeeklyStudyGoalHours != 0 {
		t.Fatalf("goal = %v; want 0", settings.WeeklyStudyGoalHours)
	}

	do(t, app, http.MethodPut, "/v1/settings", token,
		marchallObj(t, map[string]float64{"weekly_study_goal_hours": 12}), http.StatusOK, &settings)
	if settings.WeeklyStudyGoalHours != 12 {
		t.Fatalf("goal = %v; want 12", settings.WeeklyStudyGoalHours)
	}

	// out of range
	do(t, app, http.MethodPut, "/v1/settings", token,
		marchallObj(t, map[string]float64{"weekly_study_goal_hours": 200}), http.StatusBadRequest, nil)
}
