package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"duanlian/pkg/core/logger"

	"github.com/bsm/redislock"
)

// Scheduler 任务调度器，集群部署时通过Redis锁选举领导者执行分布式任务
type Scheduler struct {
	// 配置
	nodeID        string
	locker        *redislock.Client
	lockKey       string
	lockTTL       time.Duration
	checkInterval time.Duration
	maxWorkers    int

	// 运行时状态
	isRunning atomic.Bool
	isLeader  atomic.Bool
	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup

	// 任务管理
	taskHeap *TaskHeap

	// 领导者锁
	leaderLock *redislock.Lock
	lockMu     sync.Mutex

	// 工作者池
	workerSemaphore chan struct{}

	// 定时器
	timer   *time.Timer
	timerMu sync.Mutex

	logger *logger.Log

	// 统计信息
	stats *SchedulerStats
}

// SchedulerStats 调度器统计信息
type SchedulerStats struct {
	mu               sync.RWMutex
	TotalTasks       int64     `json:"total_tasks"`
	CompletedTasks   int64     `json:"completed_tasks"`
	FailedTasks      int64     `json:"failed_tasks"`
	DistributedTasks int64     `json:"distributed_tasks"`
	LocalTasks       int64     `json:"local_tasks"`
	LeaderElections  int64     `json:"leader_elections"`
	LastExecuteTime  time.Time `json:"last_execute_time"`
}

// SchedulerConfig 调度器配置
type SchedulerConfig struct {
	NodeID        string        `json:"node_id"`
	LockKey       string        `json:"lock_key"`
	LockTTL       time.Duration `json:"lock_ttl"`
	CheckInterval time.Duration `json:"check_interval"`
	MaxWorkers    int           `json:"max_workers"`
}

// DefaultSchedulerConfig 默认调度器配置
func DefaultSchedulerConfig() *SchedulerConfig {
	return &SchedulerConfig{
		NodeID:        fmt.Sprintf("scheduler-%d", time.Now().UnixNano()),
		LockKey:       "duanlian:scheduler:leader",
		LockTTL:       30 * time.Second,
		CheckInterval: 1 * time.Second,
		MaxWorkers:    10,
	}
}

// NewScheduler 创建新的调度器，locker为nil时退化为单机模式（始终视为领导者）
func NewScheduler(locker *redislock.Client, config *SchedulerConfig) *Scheduler {
	if config == nil {
		config = DefaultSchedulerConfig()
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Scheduler{
		nodeID:          config.NodeID,
		locker:          locker,
		lockKey:         config.LockKey,
		lockTTL:         config.LockTTL,
		checkInterval:   config.CheckInterval,
		maxWorkers:      config.MaxWorkers,
		ctx:             ctx,
		cancel:          cancel,
		taskHeap:        NewTaskHeap(),
		workerSemaphore: make(chan struct{}, config.MaxWorkers),
		logger:          logger.GetLogger().WithEntryName("scheduler"),
		stats:           &SchedulerStats{},
	}
}

// Start 启动调度器
func (s *Scheduler) Start() error {
	if s.isRunning.Load() {
		return fmt.Errorf("调度器已经在运行")
	}

	s.logger.Infof("启动调度器，节点ID: %s", s.nodeID)
	s.isRunning.Store(true)

	s.wg.Add(1)
	go s.mainLoop()

	// 如果有任务需要执行，立即设置定时器
	s.resetTimer()

	return nil
}

// Stop 停止调度器
func (s *Scheduler) Stop() error {
	if !s.isRunning.Load() {
		return nil
	}

	s.logger.Info("停止调度器")
	s.isRunning.Store(false)
	s.cancel()

	// 释放领导者锁
	s.lockMu.Lock()
	if s.leaderLock != nil {
		if err := s.leaderLock.Release(context.Background()); err != nil && !errors.Is(err, redislock.ErrLockNotHeld) {
			s.logger.Errorf("释放领导者锁失败: %v", err)
		}
		s.leaderLock = nil
	}
	s.lockMu.Unlock()

	s.stopTimer()

	// 等待所有goroutine完成
	s.wg.Wait()

	s.logger.Info("调度器已停止")
	return nil
}

// AddTask 添加任务
func (s *Scheduler) AddTask(task Task) error {
	if !s.isRunning.Load() {
		return fmt.Errorf("调度器未运行")
	}

	s.taskHeap.SafePush(task)
	s.stats.IncrementTotalTasks()

	s.logger.Infof("添加任务: %s [%s]", task.GetName(), task.GetID())

	s.resetTimer()

	return nil
}

// RemoveTask 移除任务
func (s *Scheduler) RemoveTask(taskID string) bool {
	removed := s.taskHeap.SafeRemove(taskID)
	if removed {
		s.logger.Infof("移除任务: %s", taskID)
		s.resetTimer()
	}
	return removed
}

// GetTask 获取任务信息
func (s *Scheduler) GetTask(taskID string) Task {
	tasks := s.taskHeap.SafeList()
	for _, task := range tasks {
		if task.GetID() == taskID {
			return task
		}
	}
	return nil
}

// ListTasks 列出所有任务
func (s *Scheduler) ListTasks() []Task {
	return s.taskHeap.SafeList()
}

// GetStats 获取统计信息
func (s *Scheduler) GetStats() *SchedulerStats {
	s.stats.mu.RLock()
	defer s.stats.mu.RUnlock()

	// 创建副本返回
	return &SchedulerStats{
		TotalTasks:       s.stats.TotalTasks,
		CompletedTasks:   s.stats.CompletedTasks,
		FailedTasks:      s.stats.FailedTasks,
		DistributedTasks: s.stats.DistributedTasks,
		LocalTasks:       s.stats.LocalTasks,
		LeaderElections:  s.stats.LeaderElections,
		LastExecuteTime:  s.stats.LastExecuteTime,
	}
}

// IsLeader 检查是否为领导者
func (s *Scheduler) IsLeader() bool {
	return s.isLeader.Load()
}

// hasLocalTasks 检查是否有本地任务
func (s *Scheduler) hasLocalTasks() bool {
	tasks := s.taskHeap.SafeList()
	for _, task := range tasks {
		if task.GetExecuteMode() == TaskExecuteModeLocal && !task.IsCompleted() {
			return true
		}
	}
	return false
}

// mainLoop 主循环
func (s *Scheduler) mainLoop() {
	defer s.wg.Done()

	leaderCheckTicker := time.NewTicker(s.checkInterval)
	defer leaderCheckTicker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-leaderCheckTicker.C:
			s.tryBecomeLeader()
		}
	}
}

// tryBecomeLeader 尝试成为领导者，已持有锁时仅续期
func (s *Scheduler) tryBecomeLeader() {
	if s.locker == nil {
		// 单机模式
		if !s.isLeader.Load() {
			s.isLeader.Store(true)
			s.stats.IncrementLeaderElections()
			s.resetTimer()
		}
		return
	}

	ctx, cancel := context.WithTimeout(s.ctx, 5*time.Second)
	defer cancel()

	s.lockMu.Lock()
	defer s.lockMu.Unlock()

	if s.leaderLock != nil {
		if err := s.leaderLock.Refresh(ctx, s.lockTTL, nil); err != nil {
			s.logger.Warnf("领导者锁续期失败: %v", err)
			s.leaderLock = nil
			s.becomeFollower()
		}
		return
	}

	lock, err := s.locker.Obtain(ctx, s.lockKey, s.lockTTL, nil)
	if err != nil {
		if !errors.Is(err, redislock.ErrNotObtained) {
			s.logger.Errorf("尝试获取领导者锁失败: %v", err)
		}
		s.becomeFollower()
		// 即使不是领导者，如果有本地任务也需要启动定时器
		if s.hasLocalTasks() {
			s.resetTimer()
		}
		return
	}

	s.leaderLock = lock
	if !s.isLeader.Load() {
		s.logger.Info("成为领导者")
		s.isLeader.Store(true)
		s.stats.IncrementLeaderElections()
		s.resetTimer()
	}
}

// becomeFollower 成为跟随者
func (s *Scheduler) becomeFollower() {
	if s.isLeader.Load() {
		s.logger.Info("失去领导者身份")
		s.isLeader.Store(false)
		// 检查是否还有本地任务需要执行，如果有则不停止定时器
		if !s.hasLocalTasks() {
			s.stopTimer()
		}
	}
}

// resetTimer 重置定时器
func (s *Scheduler) resetTimer() {
	s.timerMu.Lock()
	defer s.timerMu.Unlock()

	if s.timer != nil {
		s.timer.Stop()
	}

	nextTime := s.taskHeap.GetNextExecuteTime()
	if nextTime == nil {
		return
	}

	waitDuration := time.Until(*nextTime)
	if waitDuration < 0 {
		waitDuration = 0
	}

	s.timer = time.AfterFunc(waitDuration, s.onTimerFired)
}

// stopTimer 停止定时器
func (s *Scheduler) stopTimer() {
	s.timerMu.Lock()
	defer s.timerMu.Unlock()

	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

// onTimerFired 定时器触发
func (s *Scheduler) onTimerFired() {
	if !s.isRunning.Load() {
		return
	}

	now := time.Now()
	readyTasks := s.taskHeap.PopReadyTasks(now)

	if len(readyTasks) == 0 {
		s.resetTimer()
		return
	}

	for _, task := range readyTasks {
		s.executeTask(task)
	}

	// 定时器的重置由任务执行完成后触发
}

// executeTask 执行任务
func (s *Scheduler) executeTask(task Task) {
	shouldExecute := false
	if task.GetExecuteMode() == TaskExecuteModeDistributed {
		// 分布式任务需要领导者身份
		if s.isLeader.Load() {
			shouldExecute = true
			s.stats.IncrementDistributedTasks()
		}
	} else {
		shouldExecute = true
		s.stats.IncrementLocalTasks()
	}

	if !shouldExecute {
		// 非领导者不执行，重新加入堆等待下次调度
		nextTime := task.UpdateNextTime(time.Now())
		if !task.IsCompleted() && !nextTime.IsZero() {
			task.SetStatus(TaskStatusWaiting)
			s.taskHeap.SafePush(task)
			s.resetTimer()
		}
		return
	}

	select {
	case s.workerSemaphore <- struct{}{}:
		s.wg.Add(1)
		go func(t Task) {
			defer s.wg.Done()
			defer func() { <-s.workerSemaphore }()

			s.runTask(t)
		}(task)
	default:
		// 工作者池满，重新调度
		s.logger.Warnf("工作者池已满，任务重新调度: %s", task.GetID())
		nextTime := task.UpdateNextTime(time.Now().Add(1 * time.Second))
		if !task.IsCompleted() && !nextTime.IsZero() {
			task.SetStatus(TaskStatusWaiting)
			s.taskHeap.SafePush(task)
			s.resetTimer()
		}
	}
}

// runTask 运行任务
func (s *Scheduler) runTask(task Task) {
	start := time.Now()
	s.logger.Infof("开始执行任务: %s [%s]", task.GetName(), task.GetID())

	ctx, cancel := context.WithTimeout(s.ctx, task.GetTimeout())
	defer cancel()

	err := task.Execute(ctx)

	duration := time.Since(start)
	s.stats.SetLastExecuteTime(start)

	if err != nil {
		s.logger.Errorf("任务执行失败: %s [%s], 耗时: %v, 错误: %v",
			task.GetName(), task.GetID(), duration, err)
		s.stats.IncrementFailedTasks()
	} else {
		s.logger.Infof("任务执行成功: %s [%s], 耗时: %v",
			task.GetName(), task.GetID(), duration)
		s.stats.IncrementCompletedTasks()
	}

	// 更新下次执行时间并重新加入堆
	if !task.IsCompleted() {
		nextTime := task.UpdateNextTime(time.Now())
		if !nextTime.IsZero() {
			task.SetStatus(TaskStatusWaiting)
			s.taskHeap.SafePush(task)
			s.resetTimer()
		}
	} else {
		s.resetTimer()
	}
}

func (s *SchedulerStats) IncrementTotalTasks() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.TotalTasks++
}

func (s *SchedulerStats) IncrementCompletedTasks() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.CompletedTasks++
}

func (s *SchedulerStats) IncrementFailedTasks() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.FailedTasks++
}

func (s *SchedulerStats) IncrementDistributedTasks() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.DistributedTasks++
}

func (s *SchedulerStats) IncrementLocalTasks() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.LocalTasks++
}

func (s *SchedulerStats) IncrementLeaderElections() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.LeaderElections++
}

func (s *SchedulerStats) SetLastExecuteTime(t time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.LastExecuteTime = t
}
