package kafka

import (
	"context"
	"errors"

	"github.com/questx-lab/raffle/pkg/logger"
	"github.com/questx-lab/raffle/pkg/pubsub"

	"github.com/Shopify/sarama"
)

type subscriber struct {
	groupID     string
	brokerAddrs []string
	topics      []string
	client      sarama.ConsumerGroup
	handler     pubsub.SubscribeHandler
	logger      logger.Logger
}

type SubscriberOption func(*sarama.Config)

// FromNewest makes a new consumer group skip the messages published before it
// joined.
func FromNewest() SubscriberOption {
	return func(config *sarama.Config) {
		config.Consumer.Offsets.Initial = sarama.OffsetNewest
	}
}

func NewSubscriber(
	groupID string,
	brokerAddrs []string,
	topics []string,
	logger logger.Logger,
	handler pubsub.SubscribeHandler,
	opts ...SubscriberOption,
) (*subscriber, error) {
	config := sarama.NewConfig()
	config.Consumer.Group.Rebalance.Strategy = sarama.BalanceStrategyRoundRobin
	config.Consumer.Offsets.Initial = sarama.OffsetOldest
	for _, opt := range opts {
		opt(config)
	}

	client, err := sarama.NewConsumerGroup(brokerAddrs, groupID, config)
	if err != nil {
		return nil, err
	}

	return &subscriber{
		groupID:     groupID,
		brokerAddrs: brokerAddrs,
		topics:      topics,
		client:      client,
		handler:     handler,
		logger:      logger,
	}, nil
}

func (g *subscriber) Stop(ctx context.Context) error {
	return g.client.Close()
}

// Subscribe blocks until ctx is done or the consumer group is closed.
func (g *subscriber) Subscribe(ctx context.Context) {
	consumer := consumerGroupHandler{fn: g.handler}
	for {
		// Consume returns on every server-side rebalance, the session must
		// be recreated to get the new claims.
		if err := g.client.Consume(ctx, g.topics, &consumer); err != nil {
			if errors.Is(err, sarama.ErrClosedConsumerGroup) {
				return
			}

			g.logger.Errorf("Error from consumer group %s: %v", g.groupID, err)
		}

		if ctx.Err() != nil {
			return
		}
	}
}

type consumerGroupHandler struct {
	fn pubsub.SubscribeHandler
}

func (h *consumerGroupHandler) Setup(sarama.ConsumerGroupSession) error {
	return nil
}

func (h *consumerGroupHandler) Cleanup(session sarama.ConsumerGroupSession) error {
	return nil
}

func (h *consumerGroupHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for message := range claim.Messages() {
		h.fn(session.Context(), &pubsub.Pack{
			Key: message.Key,
			Msg: message.Value,
		}, message.Timestamp)
		session.MarkMessage(message, "")
	}

	return nil
}
