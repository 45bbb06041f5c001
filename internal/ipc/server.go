package ipc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/rpc"
	"net/rpc/jsonrpc"
	"os"
	"sync"
	"time"

	"clipvault/internal/daemon"
	"clipvault/internal/library"
	"clipvault/internal/logging"
	"clipvault/internal/logs"
	"clipvault/internal/media"
	"clipvault/internal/queue"
)

// Server exposes daemon control via JSON-RPC over a Unix domain socket.
type Server struct {
	path      string
	logger    *slog.Logger
	listener  net.Listener
	rpcServer *rpc.Server

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewServer binds the IPC socket and registers the RPC service.
func NewServer(ctx context.Context, path string, d *daemon.Daemon, logger *slog.Logger) (*Server, error) {
	if d == nil {
		return nil, errors.New("ipc server requires daemon")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	if err := os.RemoveAll(path); err != nil {
		return nil, fmt.Errorf("remove existing socket: %w", err)
	}
	listener, err := net.Listen("unix", path)
	if err != nil {
		return nil, fmt.Errorf("listen on socket: %w", err)
	}

	rpcServer := rpc.NewServer()
	svc := &service{daemon: d, logger: logger.With(logging.String(logging.FieldComponent, "ipc")), ctx: ctx}
	if err := rpcServer.RegisterName("Clipvault", svc); err != nil {
		listener.Close()
		return nil, fmt.Errorf("register rpc service: %w", err)
	}

	serverCtx, cancel := context.WithCancel(ctx)
	return &Server{
		path:      path,
		logger:    logger,
		listener:  listener,
		rpcServer: rpcServer,
		ctx:       serverCtx,
		cancel:    cancel,
	}, nil
}

// Serve accepts RPC connections until the context is canceled.
func (s *Server) Serve() {
	s.logger.Debug("ipc server listening", logging.String("socket", s.path))
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for {
			conn, err := s.listener.Accept()
			if err != nil {
				select {
				case <-s.ctx.Done():
					return
				default:
				}
				s.logger.Warn("accept failed",
					logging.Error(err),
					logging.String(logging.FieldEventType, "ipc_accept_failed"),
				)
				continue
			}
			s.wg.Add(1)
			go func(c net.Conn) {
				defer s.wg.Done()
				s.rpcServer.ServeCodec(jsonrpc.NewServerCodec(c))
			}(conn)
		}
	}()
}

// Close stops accepting connections and removes the socket file.
func (s *Server) Close() {
	s.cancel()
	if s.listener != nil {
		_ = s.listener.Close()
	}
	s.wg.Wait()
	if err := os.RemoveAll(s.path); err != nil {
		s.logger.Warn("failed to remove socket",
			logging.String("socket", s.path),
			logging.Error(err),
		)
	}
}

type service struct {
	daemon *daemon.Daemon
	logger *slog.Logger
	ctx    context.Context
}

func (s *service) Start(_ StartRequest, resp *StartResponse) error {
	if err := s.daemon.Start(s.ctx); err != nil {
		resp.Started = false
		resp.Message = err.Error()
		return nil
	}
	resp.Started = true
	resp.Message = "daemon started"
	return nil
}

func (s *service) Stop(_ StopRequest, resp *StopResponse) error {
	s.daemon.Stop()
	resp.Stopped = true
	return nil
}

func (s *service) Status(_ StatusRequest, resp *StatusResponse) error {
	status := s.daemon.Status(s.ctx)
	resp.Running = status.Running
	resp.PID = status.PID
	resp.LockPath = status.LockPath
	resp.LogPath = status.LogPath
	resp.SocketPath = status.SocketPath
	resp.Database = status.Database
	resp.Queue = QueueCounts{
		Pending:    status.Queue.Pending,
		Processing: status.Queue.Processing,
		Completed:  status.Queue.Completed,
		Failed:     status.Queue.Failed,
	}
	if status.Current != nil {
		task := fromTask(*status.Current)
		resp.Current = &task
	}
	resp.Executors = make([]ExecutorHealth, 0, len(status.Executors))
	for _, health := range status.Executors {
		resp.Executors = append(resp.Executors, ExecutorHealth{
			Kind:   string(health.Kind),
			Ready:  health.Ready,
			Detail: health.Detail,
		})
	}
	resp.Library = LibraryStats{
		Videos:      status.Library.Videos,
		Clips:       status.Library.Clips,
		Tags:        status.Library.Tags,
		Transcribed: status.Library.Transcribed,
		Analyzed:    status.Library.Analyzed,
		TotalBytes:  status.Library.TotalBytes,
	}
	return nil
}

func (s *service) QueueList(req QueueListRequest, resp *QueueListResponse) error {
	tasks, err := s.daemon.ListQueue(req.Statuses)
	if err != nil {
		return err
	}
	resp.Tasks = make([]Task, 0, len(tasks))
	for _, task := range tasks {
		resp.Tasks = append(resp.Tasks, fromTask(task))
	}
	return nil
}

func (s *service) QueueCancel(req QueueCancelRequest, resp *QueueCancelResponse) error {
	if req.ID == "" {
		return errors.New("queue cancel requires a task id")
	}
	removed, err := s.daemon.CancelTask(req.ID)
	if err != nil {
		return err
	}
	resp.Removed = removed
	return nil
}

func (s *service) QueueClear(_ QueueClearRequest, resp *QueueClearResponse) error {
	resp.Removed = s.daemon.ClearFinished()
	return nil
}

func (s *service) Export(req ExportRequest, resp *EnqueueResponse) error {
	id, err := s.daemon.ExportClip(s.ctx, media.ExportPayload{
		VideoID:      req.VideoID,
		SourcePath:   req.SourcePath,
		StartSeconds: req.StartSeconds,
		EndSeconds:   req.EndSeconds,
		OutputName:   req.OutputName,
	})
	if err != nil {
		return err
	}
	resp.TaskID = id
	return nil
}

func (s *service) Overwrite(req OverwriteRequest, resp *EnqueueResponse) error {
	id, err := s.daemon.OverwriteClip(s.ctx, media.OverwritePayload{
		VideoID:      req.VideoID,
		SourcePath:   req.SourcePath,
		StartSeconds: req.StartSeconds,
		EndSeconds:   req.EndSeconds,
		OutputPath:   req.OutputPath,
	})
	if err != nil {
		return err
	}
	resp.TaskID = id
	return nil
}

func (s *service) Import(req ImportRequest, resp *ImportResponse) error {
	if len(req.Paths) == 0 {
		return errors.New("import requires at least one path")
	}
	ids, skipped, err := s.daemon.Import(s.ctx, req.Paths)
	if err != nil {
		return err
	}
	resp.TaskIDs = ids
	resp.Skipped = skipped
	return nil
}

func (s *service) Download(req DownloadRequest, resp *EnqueueResponse) error {
	id, err := s.daemon.Download(s.ctx, req.URL, req.Title)
	if err != nil {
		return err
	}
	resp.TaskID = id
	return nil
}

func (s *service) Transcribe(req TranscribeRequest, resp *EnqueueResponse) error {
	id, err := s.daemon.Transcribe(s.ctx, req.VideoID)
	if err != nil {
		return err
	}
	resp.TaskID = id
	return nil
}

func (s *service) Analyze(req AnalyzeRequest, resp *EnqueueResponse) error {
	id, err := s.daemon.Analyze(s.ctx, req.VideoID)
	if err != nil {
		return err
	}
	resp.TaskID = id
	return nil
}

func (s *service) LibraryList(_ LibraryListRequest, resp *LibraryListResponse) error {
	videos, err := s.daemon.Library().ListVideos(s.ctx)
	if err != nil {
		return err
	}
	resp.Videos = make([]Video, 0, len(videos))
	for _, video := range videos {
		resp.Videos = append(resp.Videos, fromVideo(video))
	}
	return nil
}

func (s *service) LibraryShow(req LibraryShowRequest, resp *LibraryShowResponse) error {
	store := s.daemon.Library()
	video, err := store.GetVideoByID(s.ctx, req.VideoID)
	if err != nil {
		return err
	}
	if video == nil {
		return fmt.Errorf("video %d not in library", req.VideoID)
	}
	resp.Video = fromVideo(video)

	clips, err := store.ListClips(s.ctx, video.ID)
	if err != nil {
		return err
	}
	for _, clip := range clips {
		resp.Clips = append(resp.Clips, Clip{
			ID:           clip.ID,
			VideoID:      clip.VideoID,
			OutputPath:   clip.OutputPath,
			StartSeconds: clip.StartSeconds,
			EndSeconds:   clip.EndSeconds,
			SizeBytes:    clip.SizeBytes,
			CreatedAt:    clip.CreatedAt,
		})
	}

	tags, err := store.TagsForVideo(s.ctx, video.ID)
	if err != nil {
		return err
	}
	for _, tag := range tags {
		resp.Tags = append(resp.Tags, Tag{Kind: string(tag.Kind), Name: tag.Name})
	}
	return nil
}

func (s *service) LogTail(req LogTailRequest, resp *LogTailResponse) error {
	logPath := s.daemon.LogPath()
	wait := time.Duration(req.WaitMillis) * time.Millisecond
	if wait <= 0 && req.Follow {
		wait = time.Second
	}
	ctx := s.ctx
	if req.Follow && wait > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(s.ctx, wait+500*time.Millisecond)
		defer cancel()
	}
	result, err := logs.Tail(ctx, logPath, logs.TailOptions{
		Offset: req.Offset,
		Limit:  req.Limit,
		Follow: req.Follow,
		Wait:   wait,
	})
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			resp.Offset = result.Offset
			return nil
		}
		return err
	}
	resp.Lines = result.Lines
	resp.Offset = result.Offset
	return nil
}

func (s *service) TestNotification(_ TestNotificationRequest, resp *TestNotificationResponse) error {
	sent, message, err := s.daemon.TestNotification(s.ctx)
	resp.Sent = sent
	resp.Message = message
	return err
}

func fromVideo(video *library.Video) Video {
	return Video{
		ID:              video.ID,
		Path:            video.Path,
		Title:           video.Title,
		DurationSeconds: video.DurationSeconds,
		SizeBytes:       video.SizeBytes,
		SourceURL:       video.SourceURL,
		TranscriptPath:  video.TranscriptPath,
		AnalysisPath:    video.AnalysisPath,
		Summary:         video.Summary,
		CreatedAt:       video.CreatedAt,
	}
}

func fromTask(task queue.Task) Task {
	return Task{
		ID:         task.ID,
		Kind:       string(task.Kind),
		Status:     string(task.Status),
		Progress:   task.Progress,
		Message:    task.Message,
		Error:      task.Error,
		CreatedAt:  task.CreatedAt,
		StartedAt:  task.StartedAt,
		FinishedAt: task.FinishedAt,
	}
}
