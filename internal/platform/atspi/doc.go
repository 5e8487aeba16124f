// Package atspi implements the platform interfaces on top of the AT-SPI2
// accessibility bus, using godbus for the D-Bus transport.
//
// The accessibility bus is separate from the session bus; its address is
// obtained from org.a11y.Bus on the session bus unless AT_SPI_BUS_ADDRESS is
// set.
package atspi
