package otp

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"abcampus-finance/internal/infrastructure/logger"
)

var (
	ErrThrottled    = errors.New("an OTP was sent to this number recently")
	ErrSMSDisabled  = errors.New("sms delivery is not configured")
	ErrInvalidPhone = errors.New("phone number must hold at least 8 digits")
)

type Sender interface {
	Send(ctx context.Context, to, text string) (messageID string, err error)
}

type Throttle interface {
	Allow(ctx context.Context, key string) (bool, error)
	Release(ctx context.Context, key string) error
}

type SendOTPInput struct {
	PhoneNumber string `json:"phoneNumber" validate:"required,min=8,max=20"`
	OTP         string `json:"otp" validate:"required,numeric,min=4,max=8"`
	UserName    string `json:"userName" validate:"max=80"`
}

type SendOTPResult struct {
	Success   bool   `json:"success"`
	MessageID string `json:"message_id"`
}

type Usecase struct {
	sender   Sender
	throttle Throttle
	log      *zap.Logger
}

// NewUsecase accepts a nil sender when SMS is not configured.
func NewUsecase(s Sender, t Throttle, log *zap.Logger) *Usecase {
	return &Usecase{sender: s, throttle: t, log: logger.OrNop(log)}
}

func (u *Usecase) SendOTP(ctx context.Context, in SendOTPInput) (*SendOTPResult, error) {
	if u.sender == nil {
		return nil, ErrSMSDisabled
	}
	key := phoneKey(in.PhoneNumber)
	if len(key) < 8 {
		return nil, ErrInvalidPhone
	}

	if u.throttle != nil {
		ok, err := u.throttle.Allow(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("otp throttle: %w", err)
		}
		if !ok {
			return nil, ErrThrottled
		}
	}

	id, err := u.sender.Send(ctx, key, message(in))
	if err != nil {
		if u.throttle != nil {
			if rerr := u.throttle.Release(ctx, key); rerr != nil {
				u.log.Warn("otp throttle release failed", zap.Error(rerr))
			}
		}
		u.log.Error("otp sms failed", zap.Error(err))
		return nil, err
	}
	u.log.Info("otp sms sent", zap.String("message_id", id))
	return &SendOTPResult{Success: true, MessageID: id}, nil
}

// phoneKey keeps only the digits, so "+229 97-00" and "22997 00" share a
// throttle window.
func phoneKey(phone string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, phone)
}

func message(in SendOTPInput) string {
	name := strings.TrimSpace(in.UserName)
	if name == "" {
		return fmt.Sprintf("AB Campus Finance: votre code de vérification est %s. Il expire dans 10 minutes.", in.OTP)
	}
	return fmt.Sprintf("Bonjour %s, votre code de vérification AB Campus Finance est %s. Il expire dans 10 minutes.", name, in.OTP)
}
