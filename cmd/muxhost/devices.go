package main

import (
	"fmt"
	"io"

	"github.com/karalabe/usb"
	"go.bug.st/serial/enumerator"
)

func printSerialPorts(w io.Writer) error {
	ports, err := enumerator.GetDetailedPortsList()
	if err != nil {
		return fmt.Errorf("list serial ports: %w", err)
	}
	if len(ports) == 0 {
		fmt.Fprintln(w, "No serial ports found")
		return nil
	}
	for _, p := range ports {
		if p.IsUSB {
			fmt.Fprintf(w, "%s\tUSB %s:%s serial=%s %s\n", p.Name, p.VID, p.PID, p.SerialNumber, p.Product)
		} else {
			fmt.Fprintf(w, "%s\n", p.Name)
		}
	}
	return nil
}

func printUSBDevices(w io.Writer) error {
	if !usb.Supported() {
		return fmt.Errorf("USB enumeration is not supported on this platform")
	}
	devices, err := usb.Enumerate(0, 0)
	if err != nil {
		return fmt.Errorf("list USB devices: %w", err)
	}
	for i, d := range devices {
		fmt.Fprintf(w, "Device %d: %04x:%04x %s %s (%s)\n", i, d.VendorID, d.ProductID, d.Manufacturer, d.Product, d.Path)
	}
	return nil
}
