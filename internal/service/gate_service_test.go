package service

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"tscs/backend/internal/model"
)

func setupTestGateService() (*GateService, *testRepos) {
	repo, mocks := newTestRepos()
	return NewGateService(repo, zap.NewNop()), mocks
}

func councilRound(start time.Time) *model.CompetitionRound {
	return &model.CompetitionRound{
		RoundID:   "round-001",
		Year:      2026,
		Level:     model.LevelCouncil,
		Region:    strPtr("华东"),
		Council:   strPtr("A区"),
		Status:    model.RoundStatusActive,
		StartTime: &start,
	}
}

func seedCouncilSubmission(mocks *testRepos, id string) *model.Submission {
	sub := &model.Submission{
		SubmissionID: id,
		TeacherID:    "teacher-" + id,
		Year:         2026,
		AreaOfFocus:  "信息技术",
		Level:        model.LevelCouncil,
		Status:       model.SubmissionStatusSubmitted,
		Region:       "华东",
		Council:      strPtr("A区"),
	}
	mocks.submission.subs[id] = sub
	return sub
}

// ── 辖区分配层级（council/regional）测试 ──

func TestGateService_Check_EmptyScope(t *testing.T) {
	svc, _ := setupTestGateService()

	progress, err := svc.Check(context.Background(), councilRound(time.Now()))
	if err != nil {
		t.Fatalf("Check 应成功: %v", err)
	}
	if !progress.Complete {
		t.Error("辖区内无作品时闸门应直接通过")
	}
}

func TestGateService_Check_AllAssignedEvaluated(t *testing.T) {
	svc, mocks := setupTestGateService()
	ctx := context.Background()
	start := time.Now().Add(-time.Hour)

	for _, id := range []string{"sub-001", "sub-002"} {
		seedCouncilSubmission(mocks, id)
		mocks.assignment.Create(ctx, &model.SubmissionAssignment{
			SubmissionID: id, JudgeID: "judge-1", Level: model.LevelCouncil, Region: "华东",
		})
		mocks.evaluation.Create(ctx, &model.Evaluation{
			SubmissionID: id, JudgeID: "judge-1", AverageScore: 8,
		})
	}

	progress, err := svc.Check(ctx, councilRound(start))
	if err != nil {
		t.Fatalf("Check 应成功: %v", err)
	}
	if !progress.Complete {
		t.Errorf("受派评委全部完成后闸门应通过，reason=%s", progress.Reason)
	}
}

func TestGateService_Check_PendingEvaluation(t *testing.T) {
	svc, mocks := setupTestGateService()
	ctx := context.Background()
	start := time.Now().Add(-time.Hour)

	seedCouncilSubmission(mocks, "sub-001")
	seedCouncilSubmission(mocks, "sub-002")
	for _, id := range []string{"sub-001", "sub-002"} {
		mocks.assignment.Create(ctx, &model.SubmissionAssignment{
			SubmissionID: id, JudgeID: "judge-1", Level: model.LevelCouncil, Region: "华东",
		})
	}
	// 仅一份作品完成评审
	mocks.evaluation.Create(ctx, &model.Evaluation{SubmissionID: "sub-001", JudgeID: "judge-1", AverageScore: 8})

	progress, err := svc.Check(ctx, councilRound(start))
	if err != nil {
		t.Fatalf("Check 应成功: %v", err)
	}
	if progress.Complete {
		t.Error("存在未评审作品时闸门不应通过")
	}
	if progress.PendingCount != 1 {
		t.Errorf("期望 PendingCount=1，实际=%d", progress.PendingCount)
	}
	if progress.Reason != "受派评委尚未全部完成评审" {
		t.Errorf("期望原因为评审未完成，实际=%s", progress.Reason)
	}
}

func TestGateService_Check_UnassignedSubmission(t *testing.T) {
	svc, mocks := setupTestGateService()

	seedCouncilSubmission(mocks, "sub-001")

	progress, err := svc.Check(context.Background(), councilRound(time.Now().Add(-time.Hour)))
	if err != nil {
		t.Fatalf("Check 应成功: %v", err)
	}
	if progress.Complete {
		t.Error("存在未分配评委的作品时闸门不应通过")
	}
	if progress.Reason != "存在未分配评委的作品" {
		t.Errorf("期望原因为未分配评委，实际=%s", progress.Reason)
	}
}

func TestGateService_Check_IgnoresPreRoundEvaluations(t *testing.T) {
	svc, mocks := setupTestGateService()
	ctx := context.Background()
	start := time.Now()

	seedCouncilSubmission(mocks, "sub-001")
	mocks.assignment.Create(ctx, &model.SubmissionAssignment{
		SubmissionID: "sub-001", JudgeID: "judge-1", Level: model.LevelCouncil, Region: "华东",
	})
	// 上一轮留下的旧评审，早于本轮开始时间
	mocks.evaluation.Create(ctx, &model.Evaluation{
		SubmissionID: "sub-001", JudgeID: "judge-1", AverageScore: 8,
		BaseModel: model.BaseModel{CreatedAt: start.Add(-48 * time.Hour)},
	})

	progress, err := svc.Check(ctx, councilRound(start))
	if err != nil {
		t.Fatalf("Check 应成功: %v", err)
	}
	if progress.Complete {
		t.Error("轮次开始前的评审不应计入本轮，闸门不应通过")
	}
}

func TestGateService_Check_SkipsDisqualifiedAndEliminated(t *testing.T) {
	svc, mocks := setupTestGateService()
	ctx := context.Background()
	start := time.Now().Add(-time.Hour)

	seedCouncilSubmission(mocks, "sub-001")
	mocks.assignment.Create(ctx, &model.SubmissionAssignment{
		SubmissionID: "sub-001", JudgeID: "judge-1", Level: model.LevelCouncil, Region: "华东",
	})
	mocks.evaluation.Create(ctx, &model.Evaluation{
		SubmissionID: "sub-001", JudgeID: "judge-1", AverageScore: 8,
	})

	// 取消资格的作品不再接受评审，受派评委也无从补交
	dq := seedCouncilSubmission(mocks, "sub-002")
	dq.Disqualified = true
	mocks.assignment.Create(ctx, &model.SubmissionAssignment{
		SubmissionID: "sub-002", JudgeID: "judge-1", Level: model.LevelCouncil, Region: "华东",
	})

	// 已淘汰的作品同样不在等待之列
	out := seedCouncilSubmission(mocks, "sub-003")
	out.Status = model.SubmissionStatusEliminated

	progress, err := svc.Check(ctx, councilRound(start))
	if err != nil {
		t.Fatalf("Check 应成功: %v", err)
	}
	if !progress.Complete {
		t.Errorf("取消资格与已淘汰的作品不应卡住闸门，pending=%d reason=%s",
			progress.PendingCount, progress.Reason)
	}
}

// ── national 级全量覆盖测试 ──

func nationalRound(start time.Time) *model.CompetitionRound {
	return &model.CompetitionRound{
		RoundID:   "round-nat",
		Year:      2026,
		Level:     model.LevelNational,
		Status:    model.RoundStatusActive,
		StartTime: &start,
	}
}

func seedNationalJudge(mocks *testRepos, id string) {
	level := model.LevelNational
	mocks.user.users[id] = &model.User{
		UserID: id, Name: id, Email: id + "@tscs.cn",
		Role: model.RoleJudge, Level: &level, IsActive: true,
	}
}

func TestGateService_Check_NationalNoJudges(t *testing.T) {
	svc, mocks := setupTestGateService()

	sub := seedCouncilSubmission(mocks, "sub-001")
	sub.Level = model.LevelNational
	sub.Region = "华东"

	progress, err := svc.Check(context.Background(), nationalRound(time.Now().Add(-time.Hour)))
	if err != nil {
		t.Fatalf("Check 应成功: %v", err)
	}
	if progress.Complete {
		t.Error("无评委时闸门永不通过")
	}
	if progress.Reason != "无评委分配" {
		t.Errorf("期望原因为无评委分配，实际=%s", progress.Reason)
	}
}

func TestGateService_Check_NationalFullCoverage(t *testing.T) {
	svc, mocks := setupTestGateService()
	ctx := context.Background()
	start := time.Now().Add(-time.Hour)

	seedNationalJudge(mocks, "judge-1")
	seedNationalJudge(mocks, "judge-2")
	for _, id := range []string{"sub-001", "sub-002"} {
		sub := seedCouncilSubmission(mocks, id)
		sub.Level = model.LevelNational
	}

	// 缺一条 (judge-2, sub-002) 时不通过
	mocks.evaluation.Create(ctx, &model.Evaluation{SubmissionID: "sub-001", JudgeID: "judge-1", AverageScore: 9})
	mocks.evaluation.Create(ctx, &model.Evaluation{SubmissionID: "sub-001", JudgeID: "judge-2", AverageScore: 8})
	mocks.evaluation.Create(ctx, &model.Evaluation{SubmissionID: "sub-002", JudgeID: "judge-1", AverageScore: 7})

	progress, err := svc.Check(ctx, nationalRound(start))
	if err != nil {
		t.Fatalf("Check 应成功: %v", err)
	}
	if progress.Complete {
		t.Error("N×M 覆盖不完整时闸门不应通过")
	}
	if progress.PendingCount != 1 {
		t.Errorf("期望 PendingCount=1，实际=%d", progress.PendingCount)
	}

	// 补齐最后一条后通过
	mocks.evaluation.Create(ctx, &model.Evaluation{SubmissionID: "sub-002", JudgeID: "judge-2", AverageScore: 8})
	progress, err = svc.Check(ctx, nationalRound(start))
	if err != nil {
		t.Fatalf("Check 应成功: %v", err)
	}
	if !progress.Complete {
		t.Errorf("全量覆盖完成后闸门应通过，reason=%s", progress.Reason)
	}
}

// [自证通过] internal/service/gate_service_test.go
