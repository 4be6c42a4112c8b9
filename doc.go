// Package nearby implements the BLE v2 discovery core of a
// peer-to-peer wireless connectivity stack: advertising and scanning
// for compact Bluetooth Low Energy presence advertisements, and
// correlating fast and GATT-read variants into discovered/lost
// peripheral callbacks.
//
// Other transport mediums (Wi-Fi LAN, Bluetooth Classic, WebRTC), the
// high-level service-controller façade, certificate/crypto internals,
// and payload transport are out of scope; this package only surfaces
// the BLE medium.
//
// USAGE
//
// A Medium is constructed with a RadioController, then configured with
// the options in this package:
//
//	m, err := nearby.NewMedium(radio, nil, nil)
//	if err != nil {
//		log.Fatal(err)
//	}
//	if err := m.Configure(
//		nearby.WithStrategy(nearby.P2pPointToPoint),
//		nearby.WithFastAdvertisementServiceUUID(fastUUID),
//	); err != nil {
//		log.Fatal(err)
//	}
//	m.StartScanning("com.acme.chat", nearby.HighPower, onDiscovered, onLost, &fastUUID)
//	go m.RunScanCycle(ctx, time.Second)
package nearby
