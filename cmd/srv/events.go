package main

import (
	"context"
	"encoding/json"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/questx-lab/raffle/internal/model"
	"github.com/questx-lab/raffle/pkg/kafka"
	"github.com/questx-lab/raffle/pkg/pubsub"
	"github.com/questx-lab/raffle/pkg/xcontext"
	"github.com/urfave/cli/v2"
)

func (s *srv) startEvents(*cli.Context) error {
	cfg := xcontext.Configs(s.ctx).Kafka

	subscriber, err := kafka.NewSubscriber(
		cfg.ClientID,
		strings.Split(cfg.Addr, ","),
		[]string{cfg.EventsTopic},
		xcontext.Logger(s.ctx),
		s.logEvent,
	)
	if err != nil {
		return err
	}
	s.stoppers = append(s.stoppers, subscriber)

	ctx, cancel := signal.NotifyContext(s.ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	xcontext.Logger(s.ctx).Infof("Consuming events of topic %s", cfg.EventsTopic)
	subscriber.Subscribe(ctx)
	xcontext.Logger(s.ctx).Infof("Stopped consuming events")

	return nil
}

func (s *srv) logEvent(ctx context.Context, pack *pubsub.Pack, t time.Time) {
	var log model.Log
	if err := json.Unmarshal(pack.Msg, &log); err != nil {
		xcontext.Logger(s.ctx).Warnf("Cannot decode event of %s: %v", string(pack.Key), err)
		return
	}

	xcontext.Logger(s.ctx).Infof("%s | block %d | %s %s | %v",
		t.Format(time.RFC3339), log.BlockNumber, log.Address, log.Name, log.Args)
}

type eventConsumer interface {
	Subscribe(ctx context.Context)
	Stop(ctx context.Context) error
}

// loadStreamSource returns the hub feeding the websocket stream. With kafka
// enabled the hub is fed from the events topic, so the stream also carries
// the logs committed by the keeper and the scripts. The consumer must then be
// run by the caller. Otherwise the stream only sees the logs of this process.
func (s *srv) loadStreamSource() (*pubsub.Hub, eventConsumer, error) {
	cfg := xcontext.Configs(s.ctx).Kafka
	if !cfg.Enable {
		return s.eventHub, nil, nil
	}

	hub := pubsub.NewHub()

	// Every api instance streams all events, so each one needs its own group.
	groupID := cfg.ClientID + "-stream-" + uuid.NewString()
	subscriber, err := kafka.NewSubscriber(
		groupID,
		strings.Split(cfg.Addr, ","),
		[]string{cfg.EventsTopic},
		xcontext.Logger(s.ctx),
		relayEvents(hub),
		kafka.FromNewest(),
	)
	if err != nil {
		return nil, nil, err
	}
	s.stoppers = append(s.stoppers, subscriber)

	return hub, subscriber, nil
}

// relayEvents republishes the consumed events on the chain event topic of hub.
func relayEvents(hub *pubsub.Hub) pubsub.SubscribeHandler {
	return func(ctx context.Context, pack *pubsub.Pack, _ time.Time) {
		hub.Publish(ctx, model.ChainEventTopic, pack)
	}
}
