package midi

import (
	"encoding/binary"

	"golang.org/x/sys/unix"
)

// readyFD is an eventfd that is readable exactly while a conn has input
// waiting.
type readyFD int

func newReadyFD() (readyFD, error) {
	fd, err := unix.Eventfd(0, unix.EFD_NONBLOCK|unix.EFD_CLOEXEC)
	if err != nil {
		return -1, err
	}
	return readyFD(fd), nil
}

func (fd readyFD) set() {
	var b [8]byte
	binary.NativeEndian.PutUint64(b[:], 1)
	unix.Write(int(fd), b[:])
}

func (fd readyFD) clear() {
	var b [8]byte
	unix.Read(int(fd), b[:])
}

func (fd readyFD) close() error {
	return unix.Close(int(fd))
}
