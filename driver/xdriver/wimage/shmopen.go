//go:build linux || (darwin && !ios)

package wimage

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// ShmOpen creates a private shared memory segment and attaches it.
func ShmOpen(size int) (shmid int, buf []byte, err error) {
	shmid, err = unix.SysvShmGet(unix.IPC_PRIVATE, size, unix.IPC_CREAT|0600)
	if err != nil {
		return 0, nil, fmt.Errorf("shmget: %w", err)
	}
	buf, err = unix.SysvShmAttach(shmid, 0, 0)
	if err != nil {
		_, _ = unix.SysvShmCtl(shmid, unix.IPC_RMID, nil)
		return 0, nil, fmt.Errorf("shmat: %w", err)
	}
	return shmid, buf, nil
}

func ShmClose(shmid int, buf []byte) error {
	err := unix.SysvShmDetach(buf)
	_, err2 := unix.SysvShmCtl(shmid, unix.IPC_RMID, nil)
	if err != nil {
		return fmt.Errorf("shmdt: %w", err)
	}
	if err2 != nil {
		return fmt.Errorf("shmctl: %w", err2)
	}
	return nil
}
