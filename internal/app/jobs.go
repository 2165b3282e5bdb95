package app

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

var cronParser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

func (a *Application) initJob() {
	loc, _ := time.LoadLocation(a.appConfig.System.Location)
	a.sched = cron.New(cron.WithLocation(loc), cron.WithParser(cronParser))

	sweepEvery := a.appConfig.Orders.SweepIntervalSecs
	if sweepEvery <= 0 {
		sweepEvery = 60
	}
	_, err := a.sched.AddFunc(everySeconds(sweepEvery), func() {
		go a.SchedSweepExpiredOrders()
	})
	if err != nil {
		zap.S().Errorf("init job error %s", err.Error())
	}

	notifyEvery := a.appConfig.Orders.NotifyIntervalSecs
	if notifyEvery <= 0 {
		notifyEvery = 300
	}
	_, err = a.sched.AddFunc(everySeconds(notifyEvery), func() {
		go a.SchedDispatchNotifications()
	})
	if err != nil {
		zap.S().Errorf("init job error %s", err.Error())
	}

	a.sched.Start()
}

func everySeconds(n int) string {
	return "@every " + (time.Duration(n) * time.Second).String()
}

// SchedSweepExpiredOrders cancels pending orders past their expiry window.
func (a *Application) SchedSweepExpiredOrders() {
	defer func() {
		if err := recover(); err != nil {
			zap.S().Error(err)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if _, err := a.orderEngine.SweepExpired(ctx); err != nil {
		zap.S().Errorf("expired order sweep failed: %v", err)
	}
}

// SchedDispatchNotifications drains the notification outbox.
func (a *Application) SchedDispatchNotifications() {
	defer func() {
		if err := recover(); err != nil {
			zap.S().Error(err)
		}
	}()

	if a.notifier == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if _, err := a.notifier.DispatchPending(ctx); err != nil {
		zap.S().Errorf("notification dispatch failed: %v", err)
	}
}
