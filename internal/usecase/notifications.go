package usecase

import (
	"context"
	"fmt"
	"strings"

	"rewards/internal/config"
	"rewards/internal/domain/model"
	"rewards/internal/infra/notify"
	"rewards/internal/pricing"
)

// 通知文面の組み立てと、ユーザーの通知設定による出し分け
type Notifications struct {
	sender  notify.Notifier
	baseURL string
}

func NewNotifications(sender notify.Notifier, cfg config.Config) *Notifications {
	return &Notifications{sender: sender, baseURL: strings.TrimRight(cfg.Mail.BaseURL, "/")}
}

// 承認時は設定に関係なく送る
func (n *Notifications) NewSponsorship(ctx context.Context, driver model.User, sponsor model.Sponsor, s model.Sponsorship) {
	n.sender.Notify(ctx, notify.Message{
		Event:   notify.EventNewSponsorship,
		To:      driver.Email,
		Subject: "New Sponsorship | Driving Rewards",
		Body: fmt.Sprintf("%s,\nYou were approved for a sponsorship with %s!\nTo check out their catalog, visit %s/sponsorships/%d/catalog",
			driver.FirstName, sponsor.Name, n.baseURL, s.ID),
	})
}

func (n *Notifications) PointsBalance(ctx context.Context, driver model.User, sponsor model.Sponsor, s model.Sponsorship) {
	if !driver.PointsAlert {
		return
	}
	n.sender.Notify(ctx, notify.Message{
		Event:   notify.EventNewPointsBalance,
		To:      driver.Email,
		Subject: "New Rewards Balance | Driving Rewards",
		Body: fmt.Sprintf("%s,\nYour new rewards balance with %s is %d points.\nTo check out their catalog, visit %s/sponsorships/%d/catalog",
			driver.FirstName, sponsor.Name, s.Points, n.baseURL, s.ID),
	})
}

func (n *Notifications) OrderCanceled(ctx context.Context, driver model.User, sponsor model.Sponsor, o model.Order) {
	if !driver.IssueAlert {
		return
	}
	n.sender.Notify(ctx, notify.Message{
		Event:   notify.EventOrderCanceled,
		To:      driver.Email,
		Subject: fmt.Sprintf("Your Order from %s Was Canceled | Driving Rewards", sponsor.Name),
		Body: fmt.Sprintf("Order #%d from %s was canceled.\nTo view your orders, visit %s/orders",
			o.ID, sponsor.Name, n.baseURL),
	})
}

func (n *Notifications) OrderSummary(ctx context.Context, driver model.User, sponsor model.Sponsor, o model.Order, items []pricing.PricedItem) {
	if !driver.OrderAlert {
		return
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Order #%d from %s\n\n", o.ID, sponsor.Name)
	for _, it := range items {
		fmt.Fprintf(&b, "- %s: %d points\n", it.Title, it.Points)
	}
	fmt.Fprintf(&b, "\nSubtotal: %d points\nRewards applied: %d points\nAmount due: %d points\n", o.Subtotal, o.Rewards, o.AmountDue)

	n.sender.Notify(ctx, notify.Message{
		Event:   notify.EventOrderSummary,
		To:      driver.Email,
		Subject: fmt.Sprintf("Your Order from %s | Driving Rewards", sponsor.Name),
		Body:    b.String(),
	})
}

func (n *Notifications) AccountRemoved(ctx context.Context, u model.User) {
	n.sender.Notify(ctx, notify.Message{
		Event:   notify.EventAccountRemoved,
		To:      u.Email,
		Subject: "Account Removed | Driving Rewards",
		Body:    fmt.Sprintf("%s,\nYour account has been removed.", u.FirstName),
	})
}
