// Package display renders the clock face for a 4-digit serial 7-segment
// module and writes it to the UART.
//
// Each tick produces an 8-byte Frame in the module's command protocol:
//
//	[0x77, dots, 0x79, 0x00, d0, d1, d2, d3]
//
// 0x77 sets the decimal/colon segments from the dots bitmap and 0x79 0x00
// moves the cursor to the first digit. Bit 0x10 of dots is the colon, bit
// 0x08 is the fourth decimal point, which shows time-sync health.
package display
