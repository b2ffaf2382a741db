package backup

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/textproto"
	"strings"
	"time"

	"github.com/jlaffaye/ftp"
	"github.com/pekdex/dexcore/pkg/dex/model"
)

const snapshotFilename = "orders.json"

// FTPStore keeps the snapshot as a single file on an FTP host.
type FTPStore struct {
	host     string
	user     string
	password string
	timeout  time.Duration
}

func NewFTPStore(cfg *model.BackupConfig) *FTPStore {
	host := cfg.Host
	if !strings.Contains(host, ":") {
		host += ":21"
	}
	return &FTPStore{
		host:     host,
		user:     cfg.User,
		password: cfg.Password,
		timeout:  10 * time.Second,
	}
}

func (s *FTPStore) connect(ctx context.Context) (*ftp.ServerConn, error) {
	conn, err := ftp.Dial(s.host, ftp.DialWithContext(ctx), ftp.DialWithTimeout(s.timeout))
	if err != nil {
		return nil, err
	}
	if err := conn.Login(s.user, s.password); err != nil {
		conn.Quit() // nolint
		return nil, err
	}
	return conn, nil
}

func (s *FTPStore) Upload(ctx context.Context, data []byte) error {
	conn, err := s.connect(ctx)
	if err != nil {
		return err
	}
	defer conn.Quit() // nolint

	return conn.Stor(snapshotFilename, bytes.NewReader(data))
}

func (s *FTPStore) Download(ctx context.Context) ([]byte, error) {
	conn, err := s.connect(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Quit() // nolint

	resp, err := conn.Retr(snapshotFilename)
	if err != nil {
		var protoErr *textproto.Error
		if errors.As(err, &protoErr) && protoErr.Code == ftp.StatusFileUnavailable {
			return nil, ErrBlobNotFound
		}
		return nil, err
	}
	defer resp.Close()

	return io.ReadAll(resp)
}

func (s *FTPStore) Delete(ctx context.Context) error {
	conn, err := s.connect(ctx)
	if err != nil {
		return err
	}
	defer conn.Quit() // nolint

	return conn.Delete(snapshotFilename)
}
