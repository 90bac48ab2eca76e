// Package generator drives the synthetic sales workload.
//
// A Scheduler connects to the store once, seeds it with an initial burst of sales, and then
// generates a randomly sized batch on every tick until its context is cancelled.
// Failures during the burst are fatal; failures during a tick abandon only that batch.
package generator
