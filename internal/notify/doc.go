// Package notify fans alert messages out to notification channels: SMTP
// email, SMS provider gateways, and generic HTTP webhooks. Delivery is
// best-effort; failures are counted and logged, never propagated.
package notify
