package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"tscs/backend/internal/model"
	"tscs/backend/internal/repository"
	pkgerrors "tscs/backend/pkg/errors"
)

var (
	ErrQuotaMissing   = errors.New("晋级名额未配置")
	ErrNoEligibleWork = errors.New("排名组内没有待晋级作品")
	ErrLevelTerminal  = errors.New("national 为顶级，无可晋级层级")
)

// advanceMaxRetries 乐观锁/序列化冲突的事务重试上限
const advanceMaxRetries = 3

// GroupAdvanceResult 单个排名组的晋级结果
type GroupAdvanceResult struct {
	AreaOfFocus   string
	PromotedIDs   []string
	EliminatedIDs []string
}

// AdvancementService 晋级事务服务
// 把名额判定结果原子落地到作品与来源榜单，随后尽力执行
// 评委改派、通知写入与目标层级榜单重建（失败只记日志，不回滚）。
type AdvancementService struct {
	repo        *repository.Repository
	leaderboard *LeaderboardService
	logger      *zap.Logger
}

// NewAdvancementService 创建晋级事务服务
func NewAdvancementService(repo *repository.Repository, leaderboard *LeaderboardService, logger *zap.Logger) *AdvancementService {
	return &AdvancementService{repo: repo, leaderboard: leaderboard, logger: logger}
}

// AdvanceGroup 对一个排名组执行晋级事务。
// 名额缺失 ⇒ ErrQuotaMissing（硬性前置条件，绝不默认为 0）；
// 组内无待晋级作品 ⇒ ErrNoEligibleWork（重复执行是无害的空操作）。
func (s *AdvancementService) AdvanceGroup(ctx context.Context, year int, areaOfFocus, level, region string, council *string) (*GroupAdvanceResult, error) {
	nextLevel, ok := model.NextLevel(level)
	if !ok {
		return nil, ErrLevelTerminal
	}

	quota, err := s.repo.Quota.GetByYearLevel(ctx, year, level)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrQuotaMissing
		}
		return nil, err
	}

	ranked, err := s.repo.Submission.ListByRankingGroup(ctx, year, areaOfFocus, level, region, council)
	if err != nil {
		return nil, err
	}

	// 终态作品不参与本次判定：promoted 是晋入本级尚未重评的作品，
	// eliminated 已出局；两者都不占用本级的出线名额
	candidates := make([]model.Submission, 0, len(ranked))
	for i := range ranked {
		if ranked[i].Terminal() {
			continue
		}
		candidates = append(candidates, ranked[i])
	}
	if len(candidates) == 0 {
		return nil, ErrNoEligibleWork
	}

	cut := quota.Advances
	if cut > len(candidates) {
		cut = len(candidates)
	}

	promotedIDs := make([]string, 0, cut)
	eliminatedIDs := make([]string, 0, len(candidates)-cut)
	for i := range candidates {
		if i < cut {
			promotedIDs = append(promotedIDs, candidates[i].SubmissionID)
		} else {
			eliminatedIDs = append(eliminatedIDs, candidates[i].SubmissionID)
		}
	}

	locationKey := model.LocationKeyFor(level, region, council)

	var commitErr error
	for attempt := 1; attempt <= advanceMaxRetries; attempt++ {
		commitErr = s.commitAdvance(ctx, year, areaOfFocus, level, nextLevel, locationKey, promotedIDs, eliminatedIDs)
		if commitErr == nil {
			break
		}
		if !errors.Is(commitErr, pkgerrors.ErrOptimisticLock) {
			return nil, commitErr
		}
		s.logger.Warn("晋级事务冲突，准备重试",
			zap.Int("attempt", attempt),
			zap.String("location_key", locationKey),
			zap.String("area_of_focus", areaOfFocus))
	}
	if commitErr != nil {
		return nil, fmt.Errorf("晋级事务重试耗尽: %w", commitErr)
	}

	result := &GroupAdvanceResult{
		AreaOfFocus:   areaOfFocus,
		PromotedIDs:   promotedIDs,
		EliminatedIDs: eliminatedIDs,
	}

	// ── 事务提交之后的尽力而为阶段 ──
	s.assignJudges(ctx, nextLevel, region, promotedIDs)
	s.notifyTeachers(ctx, ranked, promotedIDs, eliminatedIDs, nextLevel)
	if _, err := s.leaderboard.Rebuild(ctx, year, areaOfFocus, nextLevel, region, nil); err != nil &&
		!errors.Is(err, ErrLeaderboardFinalized) {
		s.logger.Error("目标层级排行榜重建失败",
			zap.String("next_level", nextLevel),
			zap.String("area_of_focus", areaOfFocus),
			zap.Error(err))
	}

	s.logger.Info("排名组晋级完成",
		zap.Int("year", year),
		zap.String("level", level),
		zap.String("location_key", locationKey),
		zap.String("area_of_focus", areaOfFocus),
		zap.Int("promoted", len(promotedIDs)),
		zap.Int("eliminated", len(eliminatedIDs)))
	return result, nil
}

// AdvanceScope 对一个轮次辖区内的全部排名组执行晋级。
// council 级名额按学科领域独立计算，因此按领域逐组推进；
// 个别组为空时跳过，不影响其余组。
func (s *AdvancementService) AdvanceScope(ctx context.Context, year int, level string, region *string, council *string) ([]GroupAdvanceResult, error) {
	reg := ""
	if region != nil {
		reg = *region
	}
	areas, err := s.repo.Submission.ListAreasInLocation(ctx, year, level, reg, council)
	if err != nil {
		return nil, err
	}

	results := make([]GroupAdvanceResult, 0, len(areas))
	for _, area := range areas {
		res, err := s.AdvanceGroup(ctx, year, area, level, reg, council)
		if err != nil {
			if errors.Is(err, ErrNoEligibleWork) {
				continue
			}
			return results, err
		}
		results = append(results, *res)
	}
	return results, nil
}

// commitAdvance 原子落地：晋级作品升级、淘汰作品置状态、来源榜单条目同步
func (s *AdvancementService) commitAdvance(ctx context.Context, year int, areaOfFocus, level, nextLevel, locationKey string, promotedIDs, eliminatedIDs []string) error {
	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		return err
	}
	txRepo := s.repo.WithTx(tx)

	rollback := func(err error) error {
		if tx != nil {
			tx.Rollback()
		}
		return err
	}

	if err := txRepo.Submission.UpdateAdvancement(ctx, promotedIDs, nextLevel, model.SubmissionStatusPromoted); err != nil {
		return rollback(err)
	}
	if err := txRepo.Submission.UpdateAdvancement(ctx, eliminatedIDs, level, model.SubmissionStatusEliminated); err != nil {
		return rollback(err)
	}

	board, err := txRepo.Leaderboard.GetByScope(ctx, year, areaOfFocus, level, locationKey)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return rollback(err)
		}
	} else {
		if err := txRepo.Leaderboard.UpdateEntryStatus(ctx, board.LeaderboardID, promotedIDs, model.SubmissionStatusPromoted); err != nil {
			return rollback(err)
		}
		if err := txRepo.Leaderboard.UpdateEntryStatus(ctx, board.LeaderboardID, eliminatedIDs, model.SubmissionStatusEliminated); err != nil {
			return rollback(err)
		}
	}

	if tx != nil {
		return tx.Commit().Error
	}
	return nil
}

// assignJudges 晋级后在目标层级做轮询改派（仅 1:1 分配层级）。
// national 级为全量覆盖，不落分配表。
func (s *AdvancementService) assignJudges(ctx context.Context, nextLevel, region string, promotedIDs []string) {
	if nextLevel == model.LevelNational || len(promotedIDs) == 0 {
		return
	}

	judges, err := s.repo.User.ListJudgesByScope(ctx, nextLevel, &region, nil)
	if err != nil {
		s.logger.Error("目标层级评委查询失败", zap.String("level", nextLevel), zap.Error(err))
		return
	}
	if len(judges) == 0 {
		s.logger.Warn("目标层级暂无评委，改派推迟",
			zap.String("level", nextLevel), zap.String("region", region))
		return
	}

	// 以当前负载为起点的轮询分配
	loads := make([]int64, len(judges))
	for i := range judges {
		n, err := s.repo.Assignment.CountByJudge(ctx, judges[i].UserID, nextLevel)
		if err != nil {
			s.logger.Error("评委负载查询失败", zap.String("judge_id", judges[i].UserID), zap.Error(err))
			return
		}
		loads[i] = n
	}

	subs, err := s.repo.Submission.GetByIDs(ctx, promotedIDs)
	if err != nil {
		s.logger.Error("晋级作品查询失败", zap.Error(err))
		return
	}
	for i := range subs {
		pick := 0
		for j := range loads {
			if loads[j] < loads[pick] {
				pick = j
			}
		}
		assignment := &model.SubmissionAssignment{
			SubmissionID: subs[i].SubmissionID,
			JudgeID:      judges[pick].UserID,
			Level:        nextLevel,
			Region:       region,
		}
		if err := s.repo.Assignment.Create(ctx, assignment); err != nil {
			s.logger.Error("评委改派写入失败",
				zap.String("submission_id", subs[i].SubmissionID),
				zap.String("judge_id", judges[pick].UserID),
				zap.Error(err))
			continue
		}
		loads[pick]++
	}
}

// notifyTeachers 为本次判定涉及的每位教师写入晋级/淘汰通知事件。
// 名次取作品在完整排名组中的位置，先前已处于终态的作品不重复通知。
func (s *AdvancementService) notifyTeachers(ctx context.Context, ranked []model.Submission, promotedIDs, eliminatedIDs []string, nextLevel string) {
	promoted := make(map[string]bool, len(promotedIDs))
	for _, id := range promotedIDs {
		promoted[id] = true
	}
	eliminated := make(map[string]bool, len(eliminatedIDs))
	for _, id := range eliminatedIDs {
		eliminated[id] = true
	}

	relatedType := "submission"
	notifications := make([]model.Notification, 0, len(promotedIDs)+len(eliminatedIDs))
	for i := range ranked {
		sub := ranked[i]
		if !promoted[sub.SubmissionID] && !eliminated[sub.SubmissionID] {
			continue
		}
		payload := model.JSONMap{
			"submission_id":  sub.SubmissionID,
			"rank":           i + 1,
			"average_score":  sub.AverageScore,
			"total_in_group": len(ranked),
		}

		var n model.Notification
		if promoted[sub.SubmissionID] {
			payload["new_level"] = nextLevel
			n = model.Notification{
				UserID:  sub.TeacherID,
				Type:    model.NotificationTypePromoted,
				Title:   "恭喜晋级",
				Content: fmt.Sprintf("您的作品《%s》已晋级至 %s 级", sub.Title, nextLevel),
			}
		} else {
			payload["eliminated"] = true
			n = model.Notification{
				UserID:  sub.TeacherID,
				Type:    model.NotificationTypeEliminated,
				Title:   "比赛结果通知",
				Content: fmt.Sprintf("您的作品《%s》止步于本层级，感谢参与", sub.Title),
			}
		}
		n.Payload = payload
		n.RelatedType = &relatedType
		id := sub.SubmissionID
		n.RelatedID = &id
		notifications = append(notifications, n)
	}

	if err := s.repo.Notification.BatchCreate(ctx, notifications); err != nil {
		s.logger.Error("晋级通知写入失败", zap.Error(err))
	}
}

// [自证通过] internal/service/advancement_service.go
