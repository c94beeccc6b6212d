package services

import (
	"fmt"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"

	"github.com/Barkat-Ullah/seed-lift-backend/internal/config"
	model "github.com/Barkat-Ullah/seed-lift-backend/internal/models"
)

// StripeService porte les appels Stripe des plans et abonnements
type StripeService struct {
	api *client.API
}

func NewStripeService(cfg *config.Config) (*StripeService, error) {
	if cfg.StripeSecretKey == "" {
		return nil, fmt.Errorf("stripe configuration is missing")
	}
	api := &client.API{}
	api.Init(cfg.StripeSecretKey, nil)
	return &StripeService{api: api}, nil
}

func interval(duration model.SubscriptionDuration) string {
	if duration == model.DurationYearly {
		return "year"
	}
	return "month"
}

// CreatePlan crée le produit et le prix récurrent Stripe d'un plan,
// retourne (productID, priceID)
func (s *StripeService) CreatePlan(title string, price float64, duration model.SubscriptionDuration) (string, string, error) {
	product, err := s.api.Products.New(&stripe.ProductParams{
		Name:        stripe.String(title),
		Description: stripe.String(fmt.Sprintf("Subscription plan - %s", duration)),
		Active:      stripe.Bool(true),
	})
	if err != nil {
		return "", "", fmt.Errorf("failed to create stripe product: %w", err)
	}

	stripePrice, err := s.api.Prices.New(&stripe.PriceParams{
		Product:    stripe.String(product.ID),
		UnitAmount: stripe.Int64(int64(price * 100)),
		Currency:   stripe.String(string(stripe.CurrencyUSD)),
		Recurring: &stripe.PriceRecurringParams{
			Interval: stripe.String(interval(duration)),
		},
	})
	if err != nil {
		return "", "", fmt.Errorf("failed to create stripe price: %w", err)
	}

	return product.ID, stripePrice.ID, nil
}

// UpdateProduct met à jour le nom et la description du produit Stripe
func (s *StripeService) UpdateProduct(productID, title string, duration model.SubscriptionDuration) error {
	_, err := s.api.Products.Update(productID, &stripe.ProductParams{
		Name:        stripe.String(title),
		Description: stripe.String(fmt.Sprintf("%s subscription plan", duration)),
	})
	if err != nil {
		return fmt.Errorf("failed to update stripe product: %w", err)
	}
	return nil
}

// ReplacePrice désactive l'ancien prix et en crée un nouveau.
// Les prix Stripe sont immuables, un changement de tarif passe par là.
func (s *StripeService) ReplacePrice(productID, oldPriceID string, price float64, duration model.SubscriptionDuration) (string, error) {
	if oldPriceID != "" {
		_, err := s.api.Prices.Update(oldPriceID, &stripe.PriceParams{
			Active: stripe.Bool(false),
		})
		if err != nil {
			return "", fmt.Errorf("failed to deactivate stripe price: %w", err)
		}
	}

	newPrice, err := s.api.Prices.New(&stripe.PriceParams{
		Product:    stripe.String(productID),
		UnitAmount: stripe.Int64(int64(price * 100)),
		Currency:   stripe.String(string(stripe.CurrencyUSD)),
		Recurring: &stripe.PriceRecurringParams{
			Interval: stripe.String(interval(duration)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to create stripe price: %w", err)
	}
	return newPrice.ID, nil
}

// CreateCustomer crée le client Stripe d'un profil
func (s *StripeService) CreateCustomer(email, fullName, userID string, role model.UserRole) (string, error) {
	params := &stripe.CustomerParams{
		Email: stripe.String(email),
		Name:  stripe.String(fullName),
	}
	params.AddMetadata("userId", userID)
	params.AddMetadata("role", string(role))

	customer, err := s.api.Customers.New(params)
	if err != nil {
		return "", fmt.Errorf("failed to create stripe customer: %w", err)
	}
	return customer.ID, nil
}

// AttachPaymentMethod attache le moyen de paiement et le définit par défaut
func (s *StripeService) AttachPaymentMethod(customerID, methodID string) error {
	_, err := s.api.PaymentMethods.Attach(methodID, &stripe.PaymentMethodAttachParams{
		Customer: stripe.String(customerID),
	})
	if err != nil {
		return fmt.Errorf("failed to attach payment method: %w", err)
	}

	_, err = s.api.Customers.Update(customerID, &stripe.CustomerParams{
		InvoiceSettings: &stripe.CustomerInvoiceSettingsParams{
			DefaultPaymentMethod: stripe.String(methodID),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to set default payment method: %w", err)
	}
	return nil
}

// SubscriptionResult ramène ce que le front attend après création
type SubscriptionResult struct {
	SubscriptionID  string
	PaymentIntentID string
	ClientSecret    string
}

// CreateSubscription ouvre l'abonnement Stripe sur le prix du plan
func (s *StripeService) CreateSubscription(customerID, priceID string) (*SubscriptionResult, error) {
	params := &stripe.SubscriptionParams{
		Customer: stripe.String(customerID),
		Items: []*stripe.SubscriptionItemsParams{
			{Price: stripe.String(priceID)},
		},
	}
	params.AddExpand("latest_invoice.payment_intent")

	sub, err := s.api.Subscriptions.New(params)
	if err != nil {
		return nil, fmt.Errorf("failed to create stripe subscription: %w", err)
	}

	result := &SubscriptionResult{SubscriptionID: sub.ID}
	if sub.LatestInvoice != nil && sub.LatestInvoice.PaymentIntent != nil {
		result.PaymentIntentID = sub.LatestInvoice.PaymentIntent.ID
		result.ClientSecret = sub.LatestInvoice.PaymentIntent.ClientSecret
	}
	return result, nil
}
