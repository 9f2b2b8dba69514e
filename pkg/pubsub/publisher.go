package pubsub

import "context"

type Pack struct {
	Key []byte
	Msg []byte
}

type Publisher interface {
	Publish(context.Context, string, *Pack) error
}

type multiPublisher struct {
	publishers []Publisher
}

// NewMultiPublisher publishes every pack to all given publishers in order. The
// first error stops the fan-out.
func NewMultiPublisher(publishers ...Publisher) Publisher {
	return &multiPublisher{publishers: publishers}
}

func (p *multiPublisher) Publish(ctx context.Context, topic string, pack *Pack) error {
	for _, publisher := range p.publishers {
		if err := publisher.Publish(ctx, topic, pack); err != nil {
			return err
		}
	}

	return nil
}

type topicPublisher struct {
	publisher Publisher
	topics    map[string]string
}

// NewTopicPublisher renames the topics found in topics before publishing.
// Other topics are published unchanged.
func NewTopicPublisher(publisher Publisher, topics map[string]string) Publisher {
	return &topicPublisher{publisher: publisher, topics: topics}
}

func (p *topicPublisher) Publish(ctx context.Context, topic string, pack *Pack) error {
	if renamed, ok := p.topics[topic]; ok {
		topic = renamed
	}

	return p.publisher.Publish(ctx, topic, pack)
}
