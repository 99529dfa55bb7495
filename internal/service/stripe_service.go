package service

import (
	"fmt"
	"os"

	"github.com/stripe/stripe-go/v78"
	"github.com/stripe/stripe-go/v78/checkout/session"
	"github.com/stripe/stripe-go/v78/refund"
)

// StripeService is the payment collaborator: it creates hosted checkout
// sessions for booking amounts and refunds them by session id on
// cancellation.
type StripeService struct{}

func NewStripeService() *StripeService {
	stripe.Key = os.Getenv("STRIPE_SECRET_KEY")
	return &StripeService{}
}

func (s *StripeService) CreateCheckoutSession(amountCents int64, currency, description, customerEmail string) (string, string, error) {
	params := &stripe.CheckoutSessionParams{
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency: stripe.String(currency),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(description),
					},
					UnitAmount: stripe.Int64(amountCents),
				},
				Quantity: stripe.Int64(1),
			},
		},
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL: stripe.String(os.Getenv("STRIPE_SUCCESS_URL")),
		CancelURL:  stripe.String(os.Getenv("STRIPE_CANCEL_URL")),
	}
	if customerEmail != "" {
		params.CustomerEmail = stripe.String(customerEmail)
	}

	sess, err := session.New(params)
	if err != nil {
		return "", "", err
	}
	return sess.URL, sess.ID, nil
}

// Refund reverses the payment behind a checkout session. A session that
// was never paid has no payment intent and cannot be refunded.
func (s *StripeService) Refund(sessionID string) error {
	sess, err := session.Get(sessionID, nil)
	if err != nil {
		return fmt.Errorf("retrieving checkout session: %w", err)
	}
	if sess.PaymentIntent == nil {
		return fmt.Errorf("checkout session %s has no payment intent", sessionID)
	}
	_, err = refund.New(&stripe.RefundParams{
		PaymentIntent: stripe.String(sess.PaymentIntent.ID),
	})
	if err != nil {
		return fmt.Errorf("creating refund: %w", err)
	}
	return nil
}
