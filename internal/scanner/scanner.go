package scanner

import (
	"github.com/lib/pq"

	model "github.com/Barkat-Ullah/seed-lift-backend/internal/models"
)

// ScanUser scanne une ligne SQL vers un User
// Les colonnes OTP restent en sql.Null* (jamais sérialisées)
func ScanUser(scanner interface {
	Scan(dest ...interface{}) error
}) (*model.User, error) {
	var u model.User

	err := scanner.Scan(
		&u.ID, &u.Email, &u.Role, &u.Status,
		&u.IsEmailVerified, &u.IsDeleted, &u.OTP, &u.OTPExpiry,
		&u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &u, nil
}

// ScanSeeder scanne une ligne SQL vers un Seeder avec pq.Array pour skill
func ScanSeeder(scanner interface {
	Scan(dest ...interface{}) error
}) (*model.Seeder, error) {
	var s model.Seeder

	err := scanner.Scan(
		&s.ID, &s.FullName, &s.Email, &s.PhoneNumber, &s.Profile, &s.Description,
		pq.Array(&s.Skill), &s.IsPro, &s.Level, &s.Coin,
		&s.StripeCustomerID, &s.SubscriptionID, &s.SubscriptionStart, &s.SubscriptionEnd,
		&s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &s, nil
}

// ScanFounder scanne une ligne SQL vers un Founder
func ScanFounder(scanner interface {
	Scan(dest ...interface{}) error
}) (*model.Founder, error) {
	var f model.Founder

	err := scanner.Scan(
		&f.ID, &f.FullName, &f.Email, &f.PhoneNumber, &f.Profile, &f.Description,
		&f.BusinessName, &f.OrgType,
		&f.StripeCustomerID, &f.SubscriptionID, &f.SubscriptionStart, &f.SubscriptionEnd,
		&f.CreatedAt, &f.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &f, nil
}

// ScanAdmin scanne une ligne SQL vers un Admin
func ScanAdmin(scanner interface {
	Scan(dest ...interface{}) error
}) (*model.Admin, error) {
	var a model.Admin

	err := scanner.Scan(
		&a.ID, &a.FullName, &a.Email, &a.Profile, &a.PhoneNumber, &a.Address,
		&a.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &a, nil
}

// ScanChallenge scanne une ligne SQL vers un Challenge avec pq.Array pour
// tags et invite_talents. Les champs dérivés sont remplis par l'appelant.
func ScanChallenge(scanner interface {
	Scan(dest ...interface{}) error
}) (*model.Challenge, error) {
	var c model.Challenge

	err := scanner.Scan(
		&c.ID, &c.Title, &c.Description, &c.ChallengeType, &c.Category,
		&c.Attachment, pq.Array(&c.Tags), &c.SeedPoints, &c.Deadline,
		&c.Status, &c.IsActive, &c.IsDeleted, &c.IsAwarded,
		pq.Array(&c.InviteTalents), &c.FounderID,
		&c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &c, nil
}

// ScanComment scanne une ligne SQL vers un Comment
func ScanComment(scanner interface {
	Scan(dest ...interface{}) error
}) (*model.Comment, error) {
	var c model.Comment

	err := scanner.Scan(
		&c.ID, &c.Content, &c.SeederID, &c.FounderID, &c.ChallengeID,
		&c.ParentID, &c.IsFounderReply, &c.IsWin,
		&c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &c, nil
}

// ScanReact scanne une ligne SQL vers un React
func ScanReact(scanner interface {
	Scan(dest ...interface{}) error
}) (*model.React, error) {
	var r model.React

	err := scanner.Scan(
		&r.ID, &r.FounderID, &r.SeederID, &r.ChallengeID, &r.IsReact, &r.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &r, nil
}

// ScanSubscription scanne une ligne SQL vers un plan Subscription
func ScanSubscription(scanner interface {
	Scan(dest ...interface{}) error
}) (*model.Subscription, error) {
	var s model.Subscription

	err := scanner.Scan(
		&s.ID, &s.Title, &s.Price, &s.Duration, pq.Array(&s.Feature),
		&s.StripePriceID, &s.StripeProductID, &s.IsActive, &s.AdminID,
		&s.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &s, nil
}

// ScanPayment scanne une ligne SQL vers un Payment
func ScanPayment(scanner interface {
	Scan(dest ...interface{}) error
}) (*model.Payment, error) {
	var p model.Payment

	err := scanner.Scan(
		&p.ID, &p.SubscriptionID, &p.FounderID, &p.SeederID,
		&p.Amount, &p.Currency, &p.Status,
		&p.StripeSubscriptionID, &p.StripeCustomerID, &p.StripePaymentID,
		&p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &p, nil
}

// ScanNotification scanne une ligne SQL vers une Notification
func ScanNotification(scanner interface {
	Scan(dest ...interface{}) error
}) (*model.Notification, error) {
	var n model.Notification

	err := scanner.Scan(
		&n.ID, &n.ReceiverID, &n.SenderID, &n.Title, &n.Body, &n.IsRead, &n.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &n, nil
}

// ScanRoom scanne une ligne SQL vers une Room
func ScanRoom(scanner interface {
	Scan(dest ...interface{}) error
}) (*model.Room, error) {
	var r model.Room

	err := scanner.Scan(&r.ID, &r.SenderID, &r.ReceiverID, &r.CreatedAt)
	if err != nil {
		return nil, err
	}

	return &r, nil
}

// ScanChat scanne une ligne SQL vers un Chat
func ScanChat(scanner interface {
	Scan(dest ...interface{}) error
}) (*model.Chat, error) {
	var c model.Chat

	err := scanner.Scan(
		&c.ID, &c.RoomID, &c.SenderID, &c.ReceiverID, &c.Message, &c.IsRead, &c.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &c, nil
}

// ScanBanner scanne une ligne SQL vers une Banner
func ScanBanner(scanner interface {
	Scan(dest ...interface{}) error
}) (*model.Banner, error) {
	var b model.Banner

	err := scanner.Scan(&b.ID, &b.Title, &b.Image, &b.IsActive, &b.CreatedAt)
	if err != nil {
		return nil, err
	}

	return &b, nil
}

// ScanFaq scanne une ligne SQL vers une Faq
func ScanFaq(scanner interface {
	Scan(dest ...interface{}) error
}) (*model.Faq, error) {
	var f model.Faq

	err := scanner.Scan(&f.ID, &f.Question, &f.Answer, &f.CreatedAt)
	if err != nil {
		return nil, err
	}

	return &f, nil
}
