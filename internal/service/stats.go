package service

import (
	"context"
	"math"
	"sort"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"mailadmin/backend/internal/capability"
	"mailadmin/backend/internal/domain"
	"mailadmin/backend/internal/storage"
)

const (
	dayWindow  = 86400 * time.Second
	weekWindow = 604800 * time.Second
	// recencyThreshold 状态列缺失时判定邮箱活跃的接收新鲜度阈值
	recencyThreshold = 30 * 24 * time.Hour
)

// StatsCache 聚合快照缓存接口（可选依赖）。
type StatsCache interface {
	GetCachedOverview(ctx context.Context) (*domain.OverviewStats, error)
	CacheOverview(ctx context.Context, stats *domain.OverviewStats) error
	GetCachedMailboxStats(ctx context.Context) ([]domain.MailboxStats, error)
	CacheMailboxStats(ctx context.Context, stats []domain.MailboxStats) error
}

// StatsService 在邮件元数据上计算分组统计。
type StatsService struct {
	repo  storage.StatsRepository
	caps  *capability.Cache
	cache StatsCache
	log   *zap.Logger
	now   func() time.Time
}

// NewStatsService 创建统计服务。
func NewStatsService(repo storage.StatsRepository, caps *capability.Cache, log *zap.Logger) *StatsService {
	return &StatsService{
		repo: repo,
		caps: caps,
		log:  log,
		now:  time.Now,
	}
}

// SetCache 设置聚合快照缓存（可选）。
func (s *StatsService) SetCache(cache StatsCache) {
	s.cache = cache
}

// Overview 计算三个固定滚动窗口的方向计数。
//
// 三个窗口并发查询，合并顺序固定，观察行为与顺序执行一致。
func (s *StatsService) Overview(ctx context.Context) (*domain.OverviewStats, error) {
	if s.cache != nil {
		if cached, err := s.cache.GetCachedOverview(ctx); err == nil {
			return cached, nil
		}
	}

	now := s.now().Unix()
	var day, week, all domain.ScopeCounts

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() (err error) {
		day, err = s.repo.CountByScopeSince(groupCtx, now-int64(dayWindow.Seconds()))
		return err
	})
	group.Go(func() (err error) {
		week, err = s.repo.CountByScopeSince(groupCtx, now-int64(weekWindow.Seconds()))
		return err
	})
	group.Go(func() (err error) {
		all, err = s.repo.CountByScopeSince(groupCtx, 0)
		return err
	})
	if err := group.Wait(); err != nil {
		return nil, err
	}

	stats := &domain.OverviewStats{Last24h: day, Last7d: week, AllTime: all}
	if s.cache != nil {
		if err := s.cache.CacheOverview(ctx, stats); err != nil {
			s.log.Debug("failed to cache overview stats", zap.Error(err))
		}
	}
	return stats, nil
}

// Mailboxes 计算每个邮箱的聚合统计，排序确定。
func (s *StatsService) Mailboxes(ctx context.Context) ([]domain.MailboxStats, error) {
	if s.cache != nil {
		if cached, err := s.cache.GetCachedMailboxStats(ctx); err == nil {
			return cached, nil
		}
	}

	caps, err := s.caps.GetOrCompute(ctx)
	if err != nil {
		return nil, err
	}

	totals, err := s.repo.MailboxTotals(ctx)
	if err != nil {
		return nil, err
	}

	stats := BuildMailboxStats(totals, caps.StatusColumn, s.now())
	if s.cache != nil {
		if err := s.cache.CacheMailboxStats(ctx, stats); err != nil {
			s.log.Debug("failed to cache mailbox stats", zap.Error(err))
		}
	}
	return stats, nil
}

// BuildMailboxStats 从原始统计行构造邮箱视图（纯函数）。
//
// 百分比 = 邮箱入站数 / 全部邮箱入站总数 * 100，保留两位小数；
// 分母为零时一律 0。排序按总量降序，同量按地址升序。
func BuildMailboxStats(totals []domain.MailboxTotals, statusColumn domain.StatusColumn, now time.Time) []domain.MailboxStats {
	var totalIncoming int64
	for _, t := range totals {
		totalIncoming += t.Incoming
	}

	stats := make([]domain.MailboxStats, 0, len(totals))
	for _, t := range totals {
		var pct float64
		if totalIncoming > 0 {
			pct = math.Round(float64(t.Incoming)/float64(totalIncoming)*100*100) / 100
		}

		stats = append(stats, domain.MailboxStats{
			Address:            t.Address,
			Incoming:           t.Incoming,
			Outgoing:           t.Outgoing,
			Total:              t.Incoming + t.Outgoing,
			IncomingPercentage: pct,
			Status:             classifyMailbox(t, statusColumn, now),
			LastReceived:       t.LastReceived,
		})
	}

	sort.Slice(stats, func(i, j int) bool {
		if stats[i].Total != stats[j].Total {
			return stats[i].Total > stats[j].Total
		}
		return stats[i].Address < stats[j].Address
	})
	return stats
}

// classifyMailbox 按检测到的状态列语义判定邮箱活跃状态。
//
// 路由表带 status 列的部署：历史上收过至少一封即为活跃。
// 其余部署（包括 disabled/is_active 或完全没有状态列）：
// 按最近一次接收是否在 30 天内判定。
func classifyMailbox(t domain.MailboxTotals, statusColumn domain.StatusColumn, now time.Time) domain.MailboxStatus {
	if statusColumn == domain.StatusColumnStatus {
		if t.Incoming > 0 {
			return domain.MailboxActive
		}
		return domain.MailboxInactive
	}

	if t.LastReceived != nil && now.Unix()-*t.LastReceived <= int64(recencyThreshold.Seconds()) {
		return domain.MailboxActive
	}
	return domain.MailboxInactive
}
