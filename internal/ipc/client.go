package ipc

import (
	"net"
	"net/rpc"
	"net/rpc/jsonrpc"
	"time"
)

// Client provides RPC access to a running daemon.
type Client struct {
	conn   net.Conn
	client *rpc.Client
}

// Dial connects to the IPC socket.
func Dial(path string) (*Client, error) {
	conn, err := net.DialTimeout("unix", path, 2*time.Second)
	if err != nil {
		return nil, err
	}
	return &Client{conn: conn, client: rpc.NewClientWithCodec(jsonrpc.NewClientCodec(conn))}, nil
}

// Close closes the underlying connection.
func (c *Client) Close() error {
	if c.client != nil {
		_ = c.client.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

func call[Req any, Resp any](c *Client, method string, req Req) (*Resp, error) {
	var resp Resp
	if err := c.client.Call("Clipvault."+method, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Start asks the daemon to begin dispatching tasks.
func (c *Client) Start() (*StartResponse, error) {
	return call[StartRequest, StartResponse](c, "Start", StartRequest{})
}

// Stop asks the daemon to halt dispatching.
func (c *Client) Stop() (*StopResponse, error) {
	return call[StopRequest, StopResponse](c, "Stop", StopRequest{})
}

// Status fetches a daemon snapshot.
func (c *Client) Status() (*StatusResponse, error) {
	return call[StatusRequest, StatusResponse](c, "Status", StatusRequest{})
}

// QueueList returns tasks filtered by status names.
func (c *Client) QueueList(statuses []string) (*QueueListResponse, error) {
	return call[QueueListRequest, QueueListResponse](c, "QueueList", QueueListRequest{Statuses: statuses})
}

// QueueCancel removes one pending task.
func (c *Client) QueueCancel(id string) (*QueueCancelResponse, error) {
	return call[QueueCancelRequest, QueueCancelResponse](c, "QueueCancel", QueueCancelRequest{ID: id})
}

// QueueClear removes finished tasks from the queue view.
func (c *Client) QueueClear() (*QueueClearResponse, error) {
	return call[QueueClearRequest, QueueClearResponse](c, "QueueClear", QueueClearRequest{})
}

// Export queues a clip export.
func (c *Client) Export(req ExportRequest) (*EnqueueResponse, error) {
	return call[ExportRequest, EnqueueResponse](c, "Export", req)
}

// Overwrite queues an in-place re-cut of an exported clip.
func (c *Client) Overwrite(req OverwriteRequest) (*EnqueueResponse, error) {
	return call[OverwriteRequest, EnqueueResponse](c, "Overwrite", req)
}

// Import plans batched imports for the given files.
func (c *Client) Import(paths []string) (*ImportResponse, error) {
	return call[ImportRequest, ImportResponse](c, "Import", ImportRequest{Paths: paths})
}

// Download queues a video fetch.
func (c *Client) Download(url, title string) (*EnqueueResponse, error) {
	return call[DownloadRequest, EnqueueResponse](c, "Download", DownloadRequest{URL: url, Title: title})
}

// Transcribe queues transcription for a cataloged video.
func (c *Client) Transcribe(videoID int64) (*EnqueueResponse, error) {
	return call[TranscribeRequest, EnqueueResponse](c, "Transcribe", TranscribeRequest{VideoID: videoID})
}

// Analyze queues AI analysis for a transcribed video.
func (c *Client) Analyze(videoID int64) (*EnqueueResponse, error) {
	return call[AnalyzeRequest, EnqueueResponse](c, "Analyze", AnalyzeRequest{VideoID: videoID})
}

// LibraryList lists the catalog.
func (c *Client) LibraryList() (*LibraryListResponse, error) {
	return call[LibraryListRequest, LibraryListResponse](c, "LibraryList", LibraryListRequest{})
}

// LibraryShow fetches one video with its clips and tags.
func (c *Client) LibraryShow(videoID int64) (*LibraryShowResponse, error) {
	return call[LibraryShowRequest, LibraryShowResponse](c, "LibraryShow", LibraryShowRequest{VideoID: videoID})
}

// LogTail reads log lines from an offset.
func (c *Client) LogTail(req LogTailRequest) (*LogTailResponse, error) {
	return call[LogTailRequest, LogTailResponse](c, "LogTail", req)
}

// TestNotification sends a test push via the daemon.
func (c *Client) TestNotification() (*TestNotificationResponse, error) {
	return call[TestNotificationRequest, TestNotificationResponse](c, "TestNotification", TestNotificationRequest{})
}
