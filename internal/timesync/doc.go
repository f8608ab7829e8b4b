// Package timesync keeps wall-clock time in step with SNTP servers.
//
// The client is started once with Init and then polls in the background,
// trying each configured server in order until one answers. Readers take
// a Sample, which carries the corrected epoch and whether the most recent
// poll succeeded. Until the first successful poll the epoch is zero,
// meaning "no valid time".
package timesync
