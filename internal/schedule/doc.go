// Package schedule provides the timers and connectivity signals that drive
// automatic sync.
//
// Scheduler and NetworkObserver are small interfaces so the sync engine can
// be tested deterministically: Ticker and Pinger are the real
// implementations, Manual and ManualNetwork are driven by hand.
package schedule
