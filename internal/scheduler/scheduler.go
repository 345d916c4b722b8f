package scheduler

import (
	"log"
	"time"

	"github.com/habitroom/internal/service"
	"github.com/robfig/cron/v3"
)

// Scheduler 按 cron 表达式周期性地执行打卡补录。
// 表达式为空时调度器不启动，补录只能由管理员手工触发。
type Scheduler struct {
	cron     *cron.Cron
	backfill *service.BackfillService
	spec     string
}

// New 构造 Scheduler
func New(backfill *service.BackfillService, spec string) *Scheduler {
	return &Scheduler{
		cron:     cron.New(),
		backfill: backfill,
		spec:     spec,
	}
}

// Start 注册补录任务并启动调度，表达式为空时为空操作
func (s *Scheduler) Start() error {
	if s.spec == "" {
		return nil
	}

	if _, err := s.cron.AddFunc(s.spec, s.run); err != nil {
		return err
	}

	s.cron.Start()
	return nil
}

// Stop 停止调度并等待进行中的任务结束
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

func (s *Scheduler) run() {
	written, err := s.backfill.SyncThrough(time.Now())
	if err != nil {
		log.Printf("backfill job failed: %v", err)
		return
	}
	if written > 0 {
		log.Printf("backfill job wrote %d missed-day records", written)
	}
}
