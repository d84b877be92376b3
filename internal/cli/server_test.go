package cli

import (
	"context"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"

	"social-style-service/internal/config"
	"social-style-service/internal/domain"
	"social-style-service/internal/infra/memory"
	redisstore "social-style-service/internal/infra/redis"
)

func TestBuildDependenciesMemory(t *testing.T) {
	deps, cleanup, err := buildDependencies(context.Background(), config.Config{})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	defer cleanup()

	if _, ok := deps.sessions.(*memory.SessionStore); !ok {
		t.Fatalf("expected memory session store, got %T", deps.sessions)
	}
	q, err := deps.questionnaires.GetQuestionnaire(context.Background(), domain.DefaultQuestionnaireID)
	if err != nil || len(q.Questions) != domain.QuestionCount {
		t.Fatalf("expected built-in questionnaire, got %d questions, %v", len(q.Questions), err)
	}
}

func TestBuildDependenciesRedis(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	cfg := config.Config{}
	cfg.Redis.Addr = mr.Addr()
	deps, cleanup, err := buildDependencies(context.Background(), cfg)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	defer cleanup()

	if _, ok := deps.submissions.(*redisstore.SubmissionStore); !ok {
		t.Fatalf("expected redis submission store, got %T", deps.submissions)
	}
	if _, ok := deps.questionnaires.(*redisstore.QuestionnaireRepository); !ok {
		t.Fatalf("expected redis questionnaire cache, got %T", deps.questionnaires)
	}
}

func TestBuildDependenciesRejectsMisconfiguration(t *testing.T) {
	cases := []struct {
		name string
		cfg  func() config.Config
	}{
		{"unknown backend", func() config.Config { c := config.Config{}; c.Store.Backend = "etcd"; return c }},
		{"redis without addr", func() config.Config { c := config.Config{}; c.Store.Backend = config.BackendRedis; return c }},
		{"mongo without uri", func() config.Config { c := config.Config{}; c.Store.Backend = config.BackendMongo; return c }},
	}
	for _, c := range cases {
		if _, _, err := buildDependencies(context.Background(), c.cfg()); err == nil {
			t.Fatalf("%s: expected error", c.name)
		}
	}
}
