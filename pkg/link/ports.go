package link

import (
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"go.bug.st/serial/enumerator"
)

// Port is a serial device found on this machine.
type Port struct {
	Device      string
	Description string
	VendorID    uint16
	ProductID   uint16
}

var (
	arduinoVendors = map[uint16]bool{0x2341: true, 0x2A03: true}
	// SparkFun, Adafruit, QinHeng CH340 and Silicon Labs CP210x
	friendlyVendors = map[uint16]bool{0x2341: true, 0x2A03: true, 0x1B4F: true, 0x239A: true, 0x1A86: true, 0x10C4: true}
)

// Score rates how likely p is to be the board.
func (p Port) Score() int {
	desc := strings.ToLower(p.Description)
	s := 0
	if strings.Contains(desc, "arduino") || strings.Contains(desc, "uno") || strings.Contains(desc, "r4") {
		s += 5
	}
	if arduinoVendors[p.VendorID] {
		s += 5
	}
	if friendlyVendors[p.VendorID] {
		s += 2
	}
	if strings.Contains(desc, "usb") || strings.Contains(desc, "cdc") {
		s++
	}
	return s
}

// ChoosePort picks the board among candidates. A candidate whose device is
// exactly preferred wins outright; otherwise the best scoring one does, the
// earliest on a tie.
func ChoosePort(candidates []Port, preferred string) (Port, bool) {
	if len(candidates) == 0 {
		return Port{}, false
	}

	if preferred != "" {
		for _, p := range candidates {
			if p.Device == preferred {
				return p, true
			}
		}
	}

	ranked := make([]Port, len(candidates))
	copy(ranked, candidates)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score() > ranked[j].Score()
	})
	return ranked[0], true
}

// ListPorts asks the system for its serial ports.
func ListPorts() ([]Port, error) {
	details, err := enumerator.GetDetailedPortsList()
	if err != nil {
		return nil, err
	}
	return portsFromDetails(details), nil
}

// portsFromDetails keeps the ports a board could be on. Built-in UARTs are
// dropped, and USB ports without a product string are described as such so
// they still score above anything unknown.
func portsFromDetails(details []*enumerator.PortDetails) []Port {
	var ports []Port
	for _, d := range details {
		if d.Name == "" {
			continue
		}
		if !d.IsUSB && strings.HasPrefix(filepath.Base(d.Name), "ttyS") {
			continue
		}

		p := Port{Device: d.Name, Description: d.Product}
		if d.IsUSB {
			p.VendorID = parseID(d.VID)
			p.ProductID = parseID(d.PID)
			if p.Description == "" {
				p.Description = "USB serial"
			}
		}
		ports = append(ports, p)
	}
	return ports
}

func parseID(s string) uint16 {
	v, err := strconv.ParseUint(strings.TrimSpace(s), 16, 16)
	if err != nil {
		return 0
	}
	return uint16(v)
}
