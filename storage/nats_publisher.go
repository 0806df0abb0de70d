package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/nats-io/nats.go"

	"github.com/CodePeacock/scraper/models"
	"github.com/CodePeacock/scraper/utils"
)

// SubjectPrefix is the NATS subject root; each run goes to SubjectPrefix.<locality>.
const SubjectPrefix = "listings"

type msgPublisher interface {
	Publish(subj string, data []byte) error
}

// NATSPublisher mirrors every run as one JSON message.
type NATSPublisher struct {
	pub  msgPublisher
	conn *nats.Conn
}

// NewNATSPublisher connects to the server at url.
func NewNATSPublisher(url string) (*NATSPublisher, error) {
	nc, err := nats.Connect(url, nats.Name("listings-scraper"))
	if err != nil {
		return nil, fmt.Errorf("nats: connect %q: %w", url, err)
	}
	return &NATSPublisher{pub: nc, conn: nc}, nil
}

// Subject returns the subject a run for locality is published on. NATS
// tokens may not contain dots or wildcards, so those are replaced.
func Subject(locality string) string {
	token := strings.NewReplacer(".", "-", "*", "-", ">", "-").Replace(utils.Slug(locality))
	if token == "" {
		token = "unknown"
	}
	return SubjectPrefix + "." + token
}

func (p *NATSPublisher) Write(_ context.Context, run *models.RunReport) error {
	data, err := json.Marshal(run)
	if err != nil {
		return fmt.Errorf("nats: marshal run %s: %w", run.RunID, err)
	}
	if err := p.pub.Publish(Subject(run.Locality), data); err != nil {
		return fmt.Errorf("nats: publish run %s: %w", run.RunID, err)
	}
	return nil
}

// Close flushes pending messages and closes the connection.
func (p *NATSPublisher) Close() error {
	if p.conn == nil {
		return nil
	}
	err := p.conn.Flush()
	p.conn.Close()
	return err
}
