package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/EgorLis/infdot-upload/internal/domain"
)

// Publisher: канал доставки (redis pub/sub)
type Publisher interface {
	Publish(ctx context.Context, channel string, payload []byte) (int64, error)
}

type Notifier struct {
	pub     Publisher
	signer  *Signer
	channel string
	events  map[string]struct{}
	log     zerolog.Logger
}

var _ domain.Notifier = (*Notifier)(nil)

// events: список включённых событий из настроек (например, file_added)
func New(pub Publisher, signer *Signer, channel string, events []string, log zerolog.Logger) *Notifier {
	set := make(map[string]struct{}, len(events))
	for _, e := range events {
		if e = strings.TrimSpace(e); e != "" {
			set[e] = struct{}{}
		}
	}
	return &Notifier{pub: pub, signer: signer, channel: channel, events: set, log: log}
}

func (n *Notifier) IsEventEnabled(event string) bool {
	_, ok := n.events[event]
	return ok
}

func (n *Notifier) SendAttachmentsAdded(ctx context.Context, atts []domain.Attachment) error {
	if len(atts) == 0 {
		return nil
	}
	tok, err := n.signer.Issue(EventAttachmentsAdded, atts)
	if err != nil {
		sentTotal.WithLabelValues(resultError).Inc()
		return fmt.Errorf("sign: %w", err)
	}
	receivers, err := n.pub.Publish(ctx, n.channel, []byte(tok))
	if err != nil {
		sentTotal.WithLabelValues(resultError).Inc()
		return fmt.Errorf("publish: %w", err)
	}
	sentTotal.WithLabelValues(resultSent).Inc()
	n.log.Debug().
		Str("channel", n.channel).
		Int("attachments", len(atts)).
		Int64("receivers", receivers).
		Msg("attachments_added published")
	return nil
}
