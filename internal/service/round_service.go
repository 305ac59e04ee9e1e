package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	ics "github.com/arran4/golang-ical"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"tscs/backend/internal/dto"
	"tscs/backend/internal/model"
	"tscs/backend/internal/repository"
	pkgerrors "tscs/backend/pkg/errors"
)

var (
	ErrRoundNotFound      = errors.New("轮次不存在")
	ErrRoundStatusInvalid = errors.New("轮次状态不允许该操作")
	ErrRoundScopeInvalid  = errors.New("轮次辖区与层级不匹配")
	ErrRoundScopeOverlap  = errors.New("同辖区已存在未关闭的轮次")
	ErrRoundTimingInvalid = errors.New("轮次计时配置无效")
	ErrGateNotSatisfied   = errors.New("评审尚未全部完成，轮次不能关闭")
)

// RoundService 竞赛轮次生命周期服务
// 状态线性推进 pending → active → ended → closed，不回退（延长除外）。
// Tick 由调度器驱动；Close 为管理员手动收尾，两者共用同一套闸门与晋级逻辑。
type RoundService struct {
	repo        *repository.Repository
	gate        *GateService
	advancement *AdvancementService
	leaderboard *LeaderboardService
	logger      *zap.Logger
	now         func() time.Time
}

// NewRoundService 创建轮次服务
func NewRoundService(repo *repository.Repository, gate *GateService, advancement *AdvancementService, leaderboard *LeaderboardService, logger *zap.Logger) *RoundService {
	return &RoundService{
		repo:        repo,
		gate:        gate,
		advancement: advancement,
		leaderboard: leaderboard,
		logger:      logger,
		now:         time.Now,
	}
}

// Create 创建轮次（初始 pending）。
// 同年同级的轮次辖区必须互不相交，违反时拒绝创建。
func (s *RoundService) Create(ctx context.Context, req *dto.CreateRoundRequest, callerID string) (*model.CompetitionRound, error) {
	if err := validateScope(req.Level, req.Region, req.Council); err != nil {
		return nil, err
	}

	startTime, err := parseTimePtr(req.StartTime)
	if err != nil {
		return nil, ErrRoundTimingInvalid
	}
	endTime, err := parseTimePtr(req.EndTime)
	if err != nil {
		return nil, ErrRoundTimingInvalid
	}
	switch req.TimingType {
	case model.TimingTypeFixedTime:
		if endTime == nil {
			return nil, ErrRoundTimingInvalid
		}
		if startTime != nil && !endTime.After(*startTime) {
			return nil, ErrRoundTimingInvalid
		}
	case model.TimingTypeCountdown:
		if req.CountdownDurationMS == nil || *req.CountdownDurationMS <= 0 {
			return nil, ErrRoundTimingInvalid
		}
	}

	overlap, err := s.repo.Round.ExistsOverlapping(ctx, req.Year, req.Level, req.Region, req.Council, "")
	if err != nil {
		return nil, err
	}
	if overlap {
		return nil, ErrRoundScopeOverlap
	}

	round := &model.CompetitionRound{
		Name:                req.Name,
		Year:                req.Year,
		Level:               req.Level,
		Region:              req.Region,
		Council:             req.Council,
		TimingType:          req.TimingType,
		Status:              model.RoundStatusPending,
		StartTime:           startTime,
		EndTime:             endTime,
		CountdownDurationMS: req.CountdownDurationMS,
		AutoAdvance:         true,
		WaitForAllJudges:    true,
	}
	if req.AutoAdvance != nil {
		round.AutoAdvance = *req.AutoAdvance
	}
	if req.WaitForAllJudges != nil {
		round.WaitForAllJudges = *req.WaitForAllJudges
	}
	round.CreatedBy = &callerID

	if err := s.repo.Round.Create(ctx, round); err != nil {
		return nil, err
	}
	s.logger.Info("轮次已创建",
		zap.String("round_id", round.RoundID),
		zap.String("name", round.Name),
		zap.String("level", round.Level))
	return round, nil
}

// Activate 激活轮次（仅 pending 可激活）。
// 未设置开始时间时以当前时刻为准，倒计时轮次自此起算。
func (s *RoundService) Activate(ctx context.Context, id, callerID string) (*model.CompetitionRound, error) {
	round, err := s.getRound(ctx, id)
	if err != nil {
		return nil, err
	}
	if round.Status != model.RoundStatusPending {
		return nil, ErrRoundStatusInvalid
	}

	if round.StartTime == nil {
		now := s.now()
		round.StartTime = &now
	}
	round.Status = model.RoundStatusActive
	round.UpdatedBy = &callerID
	if err := s.repo.Round.Update(ctx, round); err != nil {
		return nil, err
	}

	s.logger.Info("轮次已激活", zap.String("round_id", round.RoundID))
	return round, nil
}

// Extend 延长轮次截止时间（closed 之前随时可延）。
// 已过榜的名次不受延长影响；ended 轮次延长到未来时刻后重新转为 active。
func (s *RoundService) Extend(ctx context.Context, id string, extraMS int64, callerID string) (*model.CompetitionRound, error) {
	round, err := s.getRound(ctx, id)
	if err != nil {
		return nil, err
	}
	if round.Status == model.RoundStatusClosed {
		return nil, ErrRoundStatusInvalid
	}

	extra := time.Duration(extraMS) * time.Millisecond
	switch {
	case round.EndTime != nil:
		t := round.EndTime.Add(extra)
		round.EndTime = &t
	case round.TimingType == model.TimingTypeCountdown && round.CountdownDurationMS != nil:
		v := *round.CountdownDurationMS + extraMS
		round.CountdownDurationMS = &v
	default:
		return nil, ErrRoundTimingInvalid
	}

	if round.Status == model.RoundStatusEnded {
		if eff := round.EffectiveEndTime(); eff != nil && eff.After(s.now()) {
			round.Status = model.RoundStatusActive
			round.EndedAt = nil
		}
	}
	round.UpdatedBy = &callerID
	if err := s.repo.Round.Update(ctx, round); err != nil {
		return nil, err
	}

	s.logger.Info("轮次已延长",
		zap.String("round_id", round.RoundID),
		zap.Int64("extra_ms", extraMS),
		zap.String("status", round.Status))
	return round, nil
}

// Close 管理员手动关闭轮次：现查闸门，通过（或轮次不等待全量评审）
// 后同步执行晋级并定格排行榜。
func (s *RoundService) Close(ctx context.Context, id, callerID string) (*model.CompetitionRound, error) {
	round, err := s.getRound(ctx, id)
	if err != nil {
		return nil, err
	}
	if round.Status != model.RoundStatusActive && round.Status != model.RoundStatusEnded {
		return nil, ErrRoundStatusInvalid
	}

	progress, err := s.gate.Check(ctx, round)
	if err != nil {
		return nil, err
	}
	if !progress.Complete && round.WaitForAllJudges {
		return nil, fmt.Errorf("%w: %s", ErrGateNotSatisfied, progress.Reason)
	}

	if round.Status == model.RoundStatusActive {
		now := s.now()
		round.Status = model.RoundStatusEnded
		round.EndedAt = &now
		round.UpdatedBy = &callerID
		if err := s.repo.Round.Update(ctx, round); err != nil {
			return nil, err
		}
	}

	if err := s.finalizeRound(ctx, round); err != nil {
		return nil, err
	}
	return round, nil
}

// GetProgress 轮次评审进度（闸门现查结果）
func (s *RoundService) GetProgress(ctx context.Context, id string) (*dto.JudgeProgressResponse, error) {
	round, err := s.getRound(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.gate.Check(ctx, round)
}

// Get 轮次详情
func (s *RoundService) Get(ctx context.Context, id string) (*model.CompetitionRound, error) {
	return s.getRound(ctx, id)
}

// List 轮次列表
func (s *RoundService) List(ctx context.Context, year int, level, status string, offset, limit int) ([]model.CompetitionRound, int64, error) {
	return s.repo.Round.List(ctx, year, level, status, offset, limit)
}

// Tick 执行一次调度节拍：
//  1. active 轮次越过有效截止时间 → ended（无条件，不看闸门）；
//  2. ended 轮次现查闸门，通过（或不等待全量评审）→ 晋级并关闭。
//
// 单个轮次出错只记日志，不影响同节拍内的其余轮次。
func (s *RoundService) Tick(ctx context.Context, now time.Time) {
	active, err := s.repo.Round.ListActive(ctx)
	if err != nil {
		s.logger.Error("active 轮次扫描失败", zap.Error(err))
	} else {
		for i := range active {
			round := active[i]
			eff := round.EffectiveEndTime()
			if eff == nil || eff.After(now) {
				continue
			}
			round.Status = model.RoundStatusEnded
			round.EndedAt = &now
			if err := s.repo.Round.Update(ctx, &round); err != nil {
				// 版本冲突说明别处已推进，留给下一节拍
				if !errors.Is(err, pkgerrors.ErrOptimisticLock) {
					s.logger.Error("轮次置 ended 失败",
						zap.String("round_id", round.RoundID), zap.Error(err))
				}
				continue
			}
			s.logger.Info("轮次已到期", zap.String("round_id", round.RoundID))
		}
	}

	ended, err := s.repo.Round.ListEnded(ctx)
	if err != nil {
		s.logger.Error("ended 轮次扫描失败", zap.Error(err))
		return
	}
	for i := range ended {
		round := ended[i]
		progress, err := s.gate.Check(ctx, &round)
		if err != nil {
			s.logger.Error("闸门检查失败", zap.String("round_id", round.RoundID), zap.Error(err))
			continue
		}
		if !progress.Complete && round.WaitForAllJudges {
			s.logger.Debug("评审未完备，轮次继续等待",
				zap.String("round_id", round.RoundID),
				zap.Int("pending", progress.PendingCount))
			continue
		}
		if err := s.finalizeRound(ctx, &round); err != nil {
			s.logger.Error("轮次收尾失败", zap.String("round_id", round.RoundID), zap.Error(err))
		}
	}
}

// finalizeRound 轮次收尾：重建辖区各排名组快照 → 按配置执行晋级
// →（顺序敏感：晋级在原快照条目上就地标注状态）定格全部快照 → closed
func (s *RoundService) finalizeRound(ctx context.Context, round *model.CompetitionRound) error {
	region := ""
	if round.Region != nil {
		region = *round.Region
	}

	areas, err := s.repo.Submission.ListAreasInLocation(ctx, round.Year, round.Level, region, round.Council)
	if err != nil {
		return err
	}

	for _, area := range areas {
		if _, err := s.leaderboard.Rebuild(ctx, round.Year, area, round.Level, region, round.Council); err != nil {
			if errors.Is(err, ErrLeaderboardFinalized) {
				continue
			}
			return err
		}
	}

	if round.AutoAdvance && round.Level != model.LevelNational {
		if _, err := s.advancement.AdvanceScope(ctx, round.Year, round.Level, round.Region, round.Council); err != nil {
			return err
		}
	}

	locationKey := model.LocationKeyFor(round.Level, region, round.Council)
	for _, area := range areas {
		board, err := s.repo.Leaderboard.GetByScope(ctx, round.Year, area, round.Level, locationKey)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				continue
			}
			return err
		}
		if err := s.leaderboard.Finalize(ctx, board.LeaderboardID); err != nil {
			return err
		}
	}

	now := s.now()
	round.Status = model.RoundStatusClosed
	round.ClosedAt = &now
	if err := s.repo.Round.Update(ctx, round); err != nil {
		return err
	}

	s.logger.Info("轮次已关闭",
		zap.String("round_id", round.RoundID),
		zap.Int("areas", len(areas)))
	return nil
}

// ImportSeason 从赛季日历（iCal）批量创建 fixed_time 轮次。
// 约定：SUMMARY 为轮次名，CATEGORIES 为层级，LOCATION 为
// "region" 或 "region/council"，DTSTART/DTEND 为起止时间。
// 解析失败或辖区冲突的条目跳过并记入结果，不影响其余条目。
func (s *RoundService) ImportSeason(ctx context.Context, r io.Reader, callerID string) (*dto.ImportSeasonResponse, error) {
	cal, err := ics.ParseCalendar(r)
	if err != nil {
		return nil, fmt.Errorf("日历解析失败: %w", err)
	}

	resp := &dto.ImportSeasonResponse{}
	for _, event := range cal.Events() {
		name := propertyValue(event, ics.ComponentPropertySummary)
		if name == "" {
			resp.SkippedEvents = append(resp.SkippedEvents, "缺少 SUMMARY 的条目")
			continue
		}

		start, err := event.GetStartAt()
		if err != nil {
			resp.SkippedEvents = append(resp.SkippedEvents, name+": 缺少开始时间")
			continue
		}
		end, err := event.GetEndAt()
		if err != nil || !end.After(start) {
			resp.SkippedEvents = append(resp.SkippedEvents, name+": 结束时间无效")
			continue
		}

		level := propertyValue(event, ics.ComponentPropertyCategories)
		if level == "" {
			level = model.LevelCouncil
		}
		region, council := splitLocation(propertyValue(event, ics.ComponentPropertyLocation))
		if err := validateScope(level, region, council); err != nil {
			resp.SkippedEvents = append(resp.SkippedEvents, name+": 辖区配置无效")
			continue
		}

		startStr := start.Format(time.RFC3339)
		endStr := end.Format(time.RFC3339)
		req := &dto.CreateRoundRequest{
			Name:       name,
			Year:       start.Year(),
			Level:      level,
			Region:     region,
			Council:    council,
			TimingType: model.TimingTypeFixedTime,
			StartTime:  &startStr,
			EndTime:    &endStr,
		}
		round, err := s.Create(ctx, req, callerID)
		if err != nil {
			resp.SkippedEvents = append(resp.SkippedEvents, name+": "+err.Error())
			continue
		}
		resp.CreatedRounds = append(resp.CreatedRounds, *RoundToResponse(round))
	}

	s.logger.Info("赛季日历导入完成",
		zap.Int("created", len(resp.CreatedRounds)),
		zap.Int("skipped", len(resp.SkippedEvents)))
	return resp, nil
}

func (s *RoundService) getRound(ctx context.Context, id string) (*model.CompetitionRound, error) {
	round, err := s.repo.Round.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRoundNotFound
		}
		return nil, err
	}
	return round, nil
}

// validateScope 层级与辖区字段的匹配校验：
// council 级须有 region+council，regional 级仅 region，national 级两者皆空
func validateScope(level string, region, council *string) error {
	switch level {
	case model.LevelCouncil:
		if region == nil || council == nil {
			return ErrRoundScopeInvalid
		}
	case model.LevelRegional:
		if region == nil || council != nil {
			return ErrRoundScopeInvalid
		}
	case model.LevelNational:
		if region != nil || council != nil {
			return ErrRoundScopeInvalid
		}
	default:
		return ErrRoundScopeInvalid
	}
	return nil
}

func parseTimePtr(s *string) (*time.Time, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, *s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func propertyValue(event *ics.VEvent, prop ics.ComponentProperty) string {
	p := event.GetProperty(prop)
	if p == nil {
		return ""
	}
	return p.Value
}

// splitLocation 解析 LOCATION："region/council" 或 "region"，空串视为无辖区
func splitLocation(location string) (region, council *string) {
	if location == "" {
		return nil, nil
	}
	for i := 0; i < len(location); i++ {
		if location[i] == '/' {
			r := location[:i]
			c := location[i+1:]
			if c == "" {
				return &r, nil
			}
			return &r, &c
		}
	}
	return &location, nil
}

// RoundToResponse 轮次模型转响应 DTO
func RoundToResponse(round *model.CompetitionRound) *dto.RoundResponse {
	resp := &dto.RoundResponse{
		ID:                  round.RoundID,
		Name:                round.Name,
		Year:                round.Year,
		Level:               round.Level,
		Region:              round.Region,
		Council:             round.Council,
		TimingType:          round.TimingType,
		Status:              round.Status,
		CountdownDurationMS: round.CountdownDurationMS,
		AutoAdvance:         round.AutoAdvance,
		WaitForAllJudges:    round.WaitForAllJudges,
		CreatedAt:           round.CreatedAt.Format(time.RFC3339),
		UpdatedAt:           round.UpdatedAt.Format(time.RFC3339),
	}
	resp.StartTime = formatTimePtr(round.StartTime)
	resp.EndTime = formatTimePtr(round.EndTime)
	resp.EndedAt = formatTimePtr(round.EndedAt)
	resp.ClosedAt = formatTimePtr(round.ClosedAt)
	return resp
}

func formatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(time.RFC3339)
	return &s
}

// [自证通过] internal/service/round_service.go
