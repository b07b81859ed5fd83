package mail

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/emersion/go-imap/v2"
	"github.com/emersion/go-imap/v2/imapclient"
	gomail "github.com/emersion/go-message/mail"

	"github.com/nhle/toastcenter/internal/listener"
)

// IMAPClient wraps go-imap v2 for polling one mailbox. Every call opens
// its own connection.
type IMAPClient struct {
	host     string
	port     string
	username string
	password string
	tls      bool
	mailbox  string
}

var _ Mailbox = (*IMAPClient)(nil)

// NewIMAPClient creates a new IMAP client configuration.
func NewIMAPClient(cfg Config, password string) *IMAPClient {
	mailbox := cfg.Mailbox
	if mailbox == "" {
		mailbox = "INBOX"
	}
	return &IMAPClient{
		host:     cfg.Host,
		port:     cfg.Port,
		username: cfg.Username,
		password: password,
		tls:      cfg.TLS,
		mailbox:  mailbox,
	}
}

// connect establishes a connection, authenticates and selects the
// mailbox. The caller must Logout the returned client.
func (c *IMAPClient) connect(_ context.Context) (*imapclient.Client, *imap.SelectData, error) {
	addr := c.host + ":" + c.port

	var client *imapclient.Client
	var err error
	if c.tls {
		client, err = imapclient.DialTLS(addr, nil)
	} else {
		client, err = imapclient.DialStartTLS(addr, nil)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("connecting to IMAP %s: %w", addr, err)
	}

	if err := client.Login(c.username, c.password).Wait(); err != nil {
		_ = client.Logout().Wait()
		return nil, nil, &listener.AuthError{
			Listener: listener.KindMail,
			Message:  fmt.Sprintf("authentication failed for %s: %v", c.username, err),
		}
	}

	selected, err := client.Select(c.mailbox, &imap.SelectOptions{ReadOnly: true}).Wait()
	if err != nil {
		_ = client.Logout().Wait()
		return nil, nil, fmt.Errorf("selecting %s: %w", c.mailbox, err)
	}
	return client, selected, nil
}

// Check logs in and returns the UID the next message will receive.
func (c *IMAPClient) Check(ctx context.Context) (uint32, error) {
	client, selected, err := c.connect(ctx)
	if err != nil {
		return 0, err
	}
	defer func() { _ = client.Logout().Wait() }()
	return uint32(selected.UIDNext), nil
}

// MessagesAfter returns the messages whose UID is greater than after,
// oldest first.
func (c *IMAPClient) MessagesAfter(ctx context.Context, after uint32) ([]Message, error) {
	client, _, err := c.connect(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = client.Logout().Wait() }()

	// UID after+1:* always matches the newest message, so results are
	// filtered again below.
	criteria := &imap.SearchCriteria{
		UID: []imap.UIDSet{{imap.UIDRange{Start: imap.UID(after + 1), Stop: 0}}},
	}
	searchData, err := client.UIDSearch(criteria, nil).Wait()
	if err != nil {
		return nil, fmt.Errorf("searching %s: %w", c.mailbox, err)
	}

	var uids []imap.UID
	for _, uid := range searchData.AllUIDs() {
		if uint32(uid) > after {
			uids = append(uids, uid)
		}
	}
	if len(uids) == 0 {
		return nil, nil
	}
	return c.fetch(client, imap.UIDSetNum(uids...))
}

// Message fetches a single message by UID. A missing message yields nil.
func (c *IMAPClient) Message(ctx context.Context, uid uint32) (*Message, error) {
	client, _, err := c.connect(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = client.Logout().Wait() }()

	msgs, err := c.fetch(client, imap.UIDSetNum(imap.UID(uid)))
	if err != nil {
		return nil, err
	}
	if len(msgs) == 0 {
		return nil, nil
	}
	return &msgs[0], nil
}

func (c *IMAPClient) fetch(client *imapclient.Client, uidSet imap.UIDSet) ([]Message, error) {
	bodySection := &imap.FetchItemBodySection{Peek: true}
	fetchOpts := &imap.FetchOptions{
		Envelope:    true,
		UID:         true,
		BodySection: []*imap.FetchItemBodySection{bodySection},
	}

	fetchCmd := client.Fetch(uidSet, fetchOpts)
	defer fetchCmd.Close()

	var msgs []Message
	for {
		data := fetchCmd.Next()
		if data == nil {
			break
		}
		buf, err := data.Collect()
		if err != nil {
			continue
		}

		msg := messageFromBuffer(buf)
		if raw := buf.FindBodySection(bodySection); raw != nil {
			msg.Snippet = Snippet(raw, snippetLen)
		}
		msgs = append(msgs, msg)
	}

	if err := fetchCmd.Close(); err != nil {
		return msgs, fmt.Errorf("fetching messages: %w", err)
	}
	return msgs, nil
}

// messageFromBuffer extracts envelope fields from a FetchMessageBuffer.
func messageFromBuffer(buf *imapclient.FetchMessageBuffer) Message {
	msg := Message{UID: uint32(buf.UID)}
	if buf.Envelope == nil {
		return msg
	}

	msg.Subject = buf.Envelope.Subject
	msg.Date = buf.Envelope.Date
	if len(buf.Envelope.From) > 0 {
		from := buf.Envelope.From[0]
		if from.Name != "" {
			msg.From = from.Name
		} else {
			msg.From = from.Addr()
		}
	}
	return msg
}

// Snippet returns the first max runes of a message's text/plain body with
// whitespace collapsed. Unparseable input is treated as plain text.
func Snippet(raw []byte, max int) string {
	text := ""
	mr, err := gomail.CreateReader(bytes.NewReader(raw))
	if err != nil {
		text = string(raw)
	} else {
		defer mr.Close()
		for {
			part, err := mr.NextPart()
			if err != nil {
				break
			}
			h, ok := part.Header.(*gomail.InlineHeader)
			if !ok {
				continue
			}
			contentType, _, _ := h.ContentType()
			if !strings.HasPrefix(contentType, "text/plain") {
				continue
			}
			body, err := io.ReadAll(part.Body)
			if err != nil {
				continue
			}
			text = string(body)
			break
		}
	}

	text = strings.Join(strings.Fields(text), " ")
	if r := []rune(text); len(r) > max {
		text = string(r[:max]) + "…"
	}
	return text
}
