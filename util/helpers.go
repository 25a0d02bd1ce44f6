package util

import (
	"bufio"
	"net"
	"os"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/sys/unix"
)

var Logger = NewLogger()

//NewLogger structured logger shared by the whole module
func NewLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetReportCaller(true)
	logger.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: "2006-01-02 15:04:05.0000",
	})
	return logger
}

//MaxListenerBacklog default accept backlog, taken from the kernel when it tells us
func MaxListenerBacklog() int {

	fd, err := os.Open("/proc/sys/net/core/somaxconn")
	if err != nil {
		return unix.SOMAXCONN
	}
	defer fd.Close()

	line, err := bufio.NewReader(fd).ReadString('\n')
	if err != nil {
		return unix.SOMAXCONN
	}

	fields := strings.Fields(line)
	if len(fields) < 1 {
		return unix.SOMAXCONN
	}

	n, err := strconv.Atoi(fields[0])
	if err != nil || n == 0 {
		return unix.SOMAXCONN
	}

	// a listen backlog is stored as a uint16 in the kernel
	if n > 1<<16-1 {
		n = 1<<16 - 1
	}
	return n
}

//SockaddrToTCPOrUnixAddr converts a syscall address into a net.Addr
func SockaddrToTCPOrUnixAddr(sa unix.Sockaddr) net.Addr {
	switch sa := sa.(type) {
	case *unix.SockaddrInet4:
		ip := make(net.IP, net.IPv4len)
		copy(ip, sa.Addr[:])
		return &net.TCPAddr{IP: ip, Port: sa.Port}
	case *unix.SockaddrInet6:
		ip := make(net.IP, net.IPv6len)
		copy(ip, sa.Addr[:])
		return &net.TCPAddr{IP: ip, Port: sa.Port, Zone: ip6ZoneToString(sa.ZoneId)}
	case *unix.SockaddrUnix:
		return &net.UnixAddr{Name: sa.Name, Net: "unix"}
	}
	return nil
}

//ResolveSockaddr "host:port" into a bindable syscall address, host may be empty, port may be 0
func ResolveSockaddr(address string) (int, unix.Sockaddr, error) {

	tcpAddr, err := net.ResolveTCPAddr("tcp", address)
	if err != nil {
		return 0, nil, err
	}

	ip := tcpAddr.IP
	if len(ip) == 0 {
		ip = net.IPv4zero
	}

	if ip4 := ip.To4(); ip4 != nil {
		sa := &unix.SockaddrInet4{Port: tcpAddr.Port}
		copy(sa.Addr[:], ip4)
		return unix.AF_INET, sa, nil
	}

	sa := &unix.SockaddrInet6{Port: tcpAddr.Port}
	copy(sa.Addr[:], ip.To16())
	if tcpAddr.Zone != "" {
		if ifi, err := net.InterfaceByName(tcpAddr.Zone); err == nil {
			sa.ZoneId = uint32(ifi.Index)
		}
	}
	return unix.AF_INET6, sa, nil
}

func ip6ZoneToString(zone uint32) string {
	if zone == 0 {
		return ""
	}
	if ifi, err := net.InterfaceByIndex(int(zone)); err == nil {
		return ifi.Name
	}
	return strconv.FormatUint(uint64(zone), 10)
}
