package delivery

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
)

const sendButtonSelector = `span[data-icon="send"]`

// Pacing controls how long the automation waits for the client and how long it
// keeps the page open after sending.
type Pacing struct {
	WaitTime   time.Duration
	CloseAfter time.Duration
}

// Automator drives a personal messaging client on behalf of the user.
type Automator interface {
	SendMessage(ctx context.Context, phone, text string, pacing Pacing) error
}

// ChromeAutomator opens the messenger web client in Chrome and presses send.
// The browser profile in userDataDir must already be logged in.
type ChromeAutomator struct {
	baseURL     string
	userDataDir string
	headless    bool
}

func NewChromeAutomator(baseURL, userDataDir string, headless bool) *ChromeAutomator {
	return &ChromeAutomator{
		baseURL:     strings.TrimRight(baseURL, "/"),
		userDataDir: userDataDir,
		headless:    headless,
	}
}

func (a *ChromeAutomator) SendURL(phone, text string) string {
	q := url.Values{}
	q.Set("phone", strings.TrimPrefix(phone, "+"))
	q.Set("text", text)
	return a.baseURL + "/send?" + q.Encode()
}

func (a *ChromeAutomator) SendMessage(ctx context.Context, phone, text string, pacing Pacing) error {
	opts := append(chromedp.DefaultExecAllocatorOptions[:], chromedp.Flag("headless", a.headless))
	if a.userDataDir != "" {
		opts = append(opts, chromedp.UserDataDir(a.userDataDir))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	if err := chromedp.Run(browserCtx, chromedp.Navigate(a.SendURL(phone, text))); err != nil {
		return fmt.Errorf("failed to open messenger client: %w", err)
	}

	waitCtx, cancelWait := context.WithTimeout(browserCtx, pacing.WaitTime)
	err := chromedp.Run(waitCtx, chromedp.WaitVisible(sendButtonSelector, chromedp.ByQuery))
	cancelWait()
	if err != nil {
		return fmt.Errorf("send button did not appear within %s: %w", pacing.WaitTime, err)
	}

	err = chromedp.Run(browserCtx,
		chromedp.Click(sendButtonSelector, chromedp.ByQuery),
		chromedp.Sleep(pacing.CloseAfter),
	)
	if err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}

	return nil
}

// WhatsAppDestination addresses a phone number through an Automator.
type WhatsAppDestination struct {
	phone     string
	automator Automator
	pacing    Pacing
}

func NewWhatsAppDestination(phone string, automator Automator, pacing Pacing) *WhatsAppDestination {
	return &WhatsAppDestination{phone: phone, automator: automator, pacing: pacing}
}

func (d *WhatsAppDestination) ID() string        { return d.phone }
func (d *WhatsAppDestination) Transport() string { return TransportWhatsApp }

func (d *WhatsAppDestination) Send(ctx context.Context, msg Message) error {
	return d.automator.SendMessage(ctx, d.phone, msg.Text, d.pacing)
}
