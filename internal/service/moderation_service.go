package service

import (
	"sync"
	"time"

	"social-system/config"
	"social-system/internal/model"
	"social-system/internal/repository"
	"social-system/pkg/logger"

	"go.uber.org/zap"
)

// ModerationService 内容审核流水线
// 举报事件进入有界队列，由单个worker顺序消费，保证同一帖子的
// 事件按序评估；评估或归档失败在worker内部重试，绝不向举报方
// 返回错误。归档是幂等的：已 ARCHIVED 的帖子重复评估是空操作
type ModerationService struct {
	postRepo *repository.PostRepository
	notifier *NotificationService

	flagThreshold   int
	trustedFlaggers map[string]struct{}
	retryInterval   time.Duration
	sweepInterval   time.Duration

	events chan uint
	quit   chan struct{}
	wg     sync.WaitGroup
}

// NewModerationService 创建ModerationService实例
func NewModerationService(postRepo *repository.PostRepository, notifier *NotificationService, cfg config.ModerationConfig) *ModerationService {
	trusted := make(map[string]struct{}, len(cfg.TrustedFlaggers))
	for _, name := range cfg.TrustedFlaggers {
		trusted[name] = struct{}{}
	}
	queueSize := cfg.QueueSize
	if queueSize <= 0 {
		queueSize = 256
	}
	retry := cfg.RetryInterval
	if retry <= 0 {
		retry = time.Second
	}
	sweep := cfg.SweepInterval
	if sweep <= 0 {
		sweep = time.Minute
	}
	return &ModerationService{
		postRepo:        postRepo,
		notifier:        notifier,
		flagThreshold:   cfg.FlagThreshold,
		trustedFlaggers: trusted,
		retryInterval:   retry,
		sweepInterval:   sweep,
		events:          make(chan uint, queueSize),
		quit:            make(chan struct{}),
	}
}

// Start 启动审核worker
func (s *ModerationService) Start() {
	s.wg.Add(1)
	go s.run()
	logger.Info("审核流水线已启动",
		zap.Int("flag_threshold", s.flagThreshold),
		zap.Int("trusted_flaggers", len(s.trustedFlaggers)))
}

// Stop 停止审核worker，等待已入队事件处理完毕
func (s *ModerationService) Stop() {
	close(s.quit)
	s.wg.Wait()
}

// EnqueueFlag 投递举报事件
// 队列满时丢弃并记录日志——帖子已落库为 FLAGGED，
// 下一轮兜底重扫会重新评估，事件最终不会丢失
func (s *ModerationService) EnqueueFlag(postID uint) {
	select {
	case s.events <- postID:
	default:
		logger.Warn("审核队列已满，丢弃举报事件，等待兜底重扫", zap.Uint("post_id", postID))
	}
}

// run 顺序消费举报事件，并按固定间隔兜底重扫
func (s *ModerationService) run() {
	defer s.wg.Done()
	ticker := time.NewTicker(s.sweepInterval)
	defer ticker.Stop()
	for {
		select {
		case postID := <-s.events:
			s.evaluateWithRetry(postID)
		case <-ticker.C:
			s.sweep()
		case <-s.quit:
			// 排空剩余事件后退出
			for {
				select {
				case postID := <-s.events:
					s.evaluateWithRetry(postID)
				default:
					return
				}
			}
		}
	}
}

// sweepBatchSize 单轮重扫的帖子数上限
const sweepBatchSize = 100

// sweep 重新评估所有 FLAGGED 但尚未归档的帖子
// 队列溢出丢弃或进程重启丢失的事件由此补偿
func (s *ModerationService) sweep() {
	ids, err := s.postRepo.ListFlaggedUnarchived(sweepBatchSize)
	if err != nil {
		logger.Error("重扫待审帖子失败", zap.Error(err))
		return
	}
	for _, id := range ids {
		if err := s.evaluate(id); err != nil {
			logger.Error("重扫评估失败", zap.Uint("post_id", id), zap.Error(err))
		}
	}
}

// evaluateWithRetry 评估失败时在worker内部重试，不向上抛错
func (s *ModerationService) evaluateWithRetry(postID uint) {
	for {
		err := s.evaluate(postID)
		if err == nil {
			return
		}
		logger.Error("审核评估失败，稍后重试",
			zap.Uint("post_id", postID),
			zap.Error(err))
		select {
		case <-time.After(s.retryInterval):
		case <-s.quit:
			return
		}
	}
}

// evaluate 评估一条帖子是否达到归档条件
// 条件：举报数达到阈值，或举报人中含有受信审核员
func (s *ModerationService) evaluate(postID uint) error {
	post, err := s.postRepo.GetByID(postID)
	if err != nil {
		return err
	}
	if post == nil || post.PostStatus == model.PostStatusArchived {
		return nil
	}

	count, err := s.postRepo.CountFlags(postID)
	if err != nil {
		return err
	}

	shouldArchive := s.flagThreshold > 0 && count >= int64(s.flagThreshold)
	if !shouldArchive {
		usernames, err := s.postRepo.FlaggerUsernames(postID)
		if err != nil {
			return err
		}
		for _, name := range usernames {
			if _, ok := s.trustedFlaggers[name]; ok {
				shouldArchive = true
				break
			}
		}
	}
	if !shouldArchive {
		return nil
	}

	archived, err := s.postRepo.Archive(postID)
	if err != nil {
		return err
	}
	if !archived {
		// 已被并发归档
		return nil
	}

	logger.Info("帖子已自动归档",
		zap.Uint("post_id", postID),
		zap.Int64("flag_count", count))

	s.notifier.Trigger(&NotificationEvent{
		Type:    NotificationPostArchived,
		UserID:  post.OwnerID,
		PostID:  postID,
		Message: "你的帖子因多次举报已被归档",
	})
	return nil
}
