// Package radio drives the wireless interface on behalf of the clock.
//
// It provides three pieces:
//   - Supervisor runs wpa_supplicant with a generated network block and
//     restarts it when it dies
//   - Watcher polls the interface for an IPv4 address and reports
//     station status changes
//   - Survey runs an `iw` scan and formats the result for the status topic
//
// When the host OS already manages the interface only the Watcher and
// Survey are used.
package radio
