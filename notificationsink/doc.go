// Package notificationsink implements a stand-in for the payment notification endpoint.
//
// It accepts POST /notify-payment, validates the body, keeps running totals exposed on GET /stats,
// and can be told to fail a share of the requests so the generator's failure handling can be observed.
package notificationsink
