package diag

import (
	"context"
	"fmt"
	stdnet "net"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/shirou/gopsutil/v4/net"
)

// InterfaceAddr is one IPv4 address bound to an interface.
type InterfaceAddr struct {
	IP      string `json:"ip"`
	Netmask string `json:"netmask,omitempty"`
	Type    string `json:"type"`
}

// Interface is a network interface with its IPv4 addresses.
type Interface struct {
	Name      string          `json:"name"`
	Addresses []InterfaceAddr `json:"addresses"`
}

// NetworkReport is the full network diagnostics view.
type NetworkReport struct {
	LocalIP    string      `json:"local_ip"`
	Hostname   string      `json:"hostname"`
	Interfaces []Interface `json:"interfaces"`
	Stats      NetIOStats  `json:"stats"`
}

// NetIOStats are host-wide IO counters.
type NetIOStats struct {
	BytesSent   uint64 `json:"bytes_sent"`
	BytesRecv   uint64 `json:"bytes_recv"`
	PacketsSent uint64 `json:"packets_sent"`
	PacketsRecv uint64 `json:"packets_recv"`
}

// NetworkInfo gathers local addressing, interfaces, and IO counters.
func NetworkInfo(ctx context.Context) (*NetworkReport, error) {
	hostname, _ := os.Hostname()
	report := &NetworkReport{
		LocalIP:  localIP(),
		Hostname: hostname,
	}

	ifaces, err := net.InterfacesWithContext(ctx)
	if err != nil {
		return nil, err
	}
	for _, iface := range ifaces {
		entry := Interface{Name: iface.Name}
		for _, addr := range iface.Addrs {
			ip, _, err := stdnet.ParseCIDR(addr.Addr)
			if err != nil || ip.To4() == nil {
				continue
			}
			entry.Addresses = append(entry.Addresses, InterfaceAddr{IP: ip.String(), Type: "IPv4"})
		}
		if len(entry.Addresses) > 0 {
			report.Interfaces = append(report.Interfaces, entry)
		}
	}

	counters, err := net.IOCountersWithContext(ctx, false)
	if err == nil && len(counters) > 0 {
		report.Stats = NetIOStats{
			BytesSent:   counters[0].BytesSent,
			BytesRecv:   counters[0].BytesRecv,
			PacketsSent: counters[0].PacketsSent,
			PacketsRecv: counters[0].PacketsRecv,
		}
	}
	return report, nil
}

// localIP discovers the outbound interface address without sending traffic.
func localIP() string {
	conn, err := stdnet.Dial("udp", "8.8.8.8:80")
	if err != nil {
		return "127.0.0.1"
	}
	defer conn.Close()
	if addr, ok := conn.LocalAddr().(*stdnet.UDPAddr); ok {
		return addr.IP.String()
	}
	return "127.0.0.1"
}

// PingResult reports one ping run.
type PingResult struct {
	Target    string `json:"target"`
	Reachable bool   `json:"reachable"`
	Output    string `json:"output"`
}

// Ping shells out to the system ping utility with four probes.
func Ping(ctx context.Context, target string) (*PingResult, error) {
	countFlag := "-c"
	if runtime.GOOS == "windows" {
		countFlag = "-n"
	}
	out, err := runCommand(ctx, "ping", countFlag, "4", target)
	if err != nil && out == "" {
		return nil, err
	}
	lower := strings.ToLower(out)
	return &PingResult{
		Target:    target,
		Reachable: strings.Contains(lower, "ttl=") || strings.Contains(lower, "time="),
		Output:    out,
	}, nil
}

// DNSResult reports one resolution attempt. A lookup failure is data, not an
// error: the endpoint reports "did not resolve" rather than failing.
type DNSResult struct {
	Domain     string `json:"domain"`
	ResolvedIP string `json:"resolved_ip,omitempty"`
	Success    bool   `json:"success"`
	Error      string `json:"error,omitempty"`
}

// DNSLookup resolves a domain with the system resolver.
func DNSLookup(ctx context.Context, domain string) *DNSResult {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	addrs, err := stdnet.DefaultResolver.LookupHost(ctx, domain)
	if err != nil || len(addrs) == 0 {
		res := &DNSResult{Domain: domain}
		if err != nil {
			res.Error = err.Error()
		}
		return res
	}
	return &DNSResult{Domain: domain, ResolvedIP: addrs[0], Success: true}
}

// TracerouteResult reports a hop trace.
type TracerouteResult struct {
	Target string   `json:"target"`
	Hops   []string `json:"hops"`
	Output string   `json:"output"`
}

// Traceroute shells out to the system trace utility, capped at 15 hops.
func Traceroute(ctx context.Context, target string) (*TracerouteResult, error) {
	var out string
	var err error
	if runtime.GOOS == "windows" {
		out, err = runCommand(ctx, "tracert", "-d", "-h", "15", target)
	} else {
		out, err = runCommand(ctx, "traceroute", "-n", "-m", "15", target)
	}
	if err != nil && out == "" {
		return nil, err
	}
	res := &TracerouteResult{Target: target, Output: out}
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if strings.Contains(line, "*") || strings.Contains(strings.ToLower(line), "ms") {
			res.Hops = append(res.Hops, line)
		}
	}
	return res, nil
}

// PortCheckResult reports TCP reachability of one host:port.
type PortCheckResult struct {
	Host string `json:"host"`
	Port int    `json:"port"`
	Open bool   `json:"open"`
}

// PortCheck attempts a TCP connect with a 3 second timeout.
func PortCheck(host string, port int) (*PortCheckResult, error) {
	if port < 1 || port > 65535 {
		return nil, fmt.Errorf("invalid port %d", port)
	}
	res := &PortCheckResult{Host: host, Port: port}
	conn, err := stdnet.DialTimeout("tcp", stdnet.JoinHostPort(host, strconv.Itoa(port)), 3*time.Second)
	if err == nil {
		conn.Close()
		res.Open = true
	}
	return res, nil
}
