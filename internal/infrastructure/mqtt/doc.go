// Package mqtt provides the clock's MQTT session.
//
// This package manages:
//   - A single broker session that connects in the background once the
//     network is up and reconnects automatically
//   - Last Will and Testament so subscribers see the clock drop offline
//   - Subscriptions that survive reconnects
//   - Callbacks for connect, disconnect and acknowledged publishes
//
// # Usage
//
//	client := mqtt.New(mqtt.Options{
//	    Host: "broker.lan", Port: 1883, ClientID: "clock-kitchen",
//	    Will: &mqtt.Will{Topic: "/node/info", Payload: "connstate:offline;device:/home/lab/clock"},
//	})
//	client.SetOnConnect(func() { ... })
//	defer client.Close()
//
//	// Later, once the radio reports an address:
//	_ = client.Connect()
package mqtt
