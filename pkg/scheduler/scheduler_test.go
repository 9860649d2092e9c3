package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"

	"event-gallery/domain/models"
	"event-gallery/domain/services"
	"event-gallery/pkg/config"
)

func TestValidateCronExpression(t *testing.T) {
	tests := []struct {
		expr    string
		wantErr bool
	}{
		{"*/5 * * * *", false},
		{"0 3 * * *", false},
		{"not a cron", true},
		{"61 * * * *", true},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			err := ValidateCronExpression(tt.expr)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateCronExpression(%q) err = %v, wantErr %v", tt.expr, err, tt.wantErr)
			}
		})
	}
}

func TestAddAndRemoveJobs(t *testing.T) {
	s := NewJobScheduler()
	if err := s.AddInterval("a", time.Hour, func() {}); err != nil {
		t.Fatal(err)
	}
	if err := s.AddInterval("a", time.Hour, func() {}); err == nil {
		t.Error("duplicate id accepted")
	}
	if err := s.AddInterval("b", 0, func() {}); err == nil {
		t.Error("zero interval accepted")
	}
	if err := s.AddCron("c", "0 3 * * *", func() {}); err != nil {
		t.Fatal(err)
	}

	jobs := s.ListJobs()
	if len(jobs) != 2 || jobs[0].ID != "a" || jobs[1].ID != "c" {
		t.Fatalf("jobs = %+v", jobs)
	}
	if err := s.RemoveJob("a"); err != nil {
		t.Fatal(err)
	}
	if err := s.RemoveJob("a"); err == nil {
		t.Error("removing a missing job succeeded")
	}
}

func TestIntervalJobRuns(t *testing.T) {
	s := NewJobScheduler()
	var runs atomic.Int32
	if err := s.AddInterval("tick", 50*time.Millisecond, func() { runs.Add(1) }); err != nil {
		t.Fatal(err)
	}
	s.Start()
	defer s.Stop()

	deadline := time.Now().Add(2 * time.Second)
	for runs.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if runs.Load() == 0 {
		t.Fatal("interval job never ran")
	}
	if jobs := s.ListJobs(); jobs[0].LastRun == nil {
		t.Error("last run not recorded")
	}
}

type fakeMatching struct {
	services.MatchingService
	released atomic.Int32
}

func (f *fakeMatching) ReleaseStale(context.Context, time.Duration) (int64, error) {
	f.released.Add(1)
	return 0, nil
}

func (f *fakeMatching) Trigger(context.Context, models.BatchTrigger) (*models.MatchBatch, error) {
	return &models.MatchBatch{ID: uuid.New()}, nil
}

func TestRegisterMatchingJobs(t *testing.T) {
	tests := []struct {
		name     string
		cfg      config.MatchingConfig
		wantJobs []string
		wantErr  bool
	}{
		{"reaper only", config.MatchingConfig{StaleAfter: time.Minute}, []string{JobReleaseStale}, false},
		{"reaper and cron", config.MatchingConfig{StaleAfter: time.Minute, AutoCron: "*/10 * * * *"}, []string{JobAutoProcess, JobReleaseStale}, false},
		{"bad cron", config.MatchingConfig{AutoCron: "sometimes"}, nil, true},
		{"nothing", config.MatchingConfig{}, nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewJobScheduler()
			err := RegisterMatchingJobs(s, &fakeMatching{}, tt.cfg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v", err)
			}
			jobs := s.ListJobs()
			if len(jobs) != len(tt.wantJobs) {
				t.Fatalf("jobs = %+v", jobs)
			}
			for i, id := range tt.wantJobs {
				if jobs[i].ID != id {
					t.Errorf("job %d = %s, want %s", i, jobs[i].ID, id)
				}
			}
		})
	}
}
