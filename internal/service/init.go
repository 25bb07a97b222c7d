package service

import (
	"go.uber.org/zap"

	"clipforge/config"
	"clipforge/internal/media"
	"clipforge/internal/types"
	"clipforge/log"
	"clipforge/pkg/openai"
	"clipforge/pkg/oss"
	"clipforge/pkg/whisper"
)

type Service struct {
	Transcriber   types.Transcriber
	ChatCompleter types.ChatCompleter
	Uploader      types.Uploader
	Renderer      *media.Renderer
}

func NewService() *Service {
	transcriber := whisper.NewClient(
		config.Conf.Transcribe.BaseUrl,
		config.Conf.Transcribe.ApiKey,
		config.Conf.Transcribe.Model,
		config.Conf.App.Proxy,
	)
	chatCompleter := openai.NewClient(
		config.Conf.Llm.BaseUrl,
		config.Conf.Llm.ApiKey,
		config.Conf.Llm.Model,
		config.Conf.App.Proxy,
	)

	var uploader types.Uploader
	if config.Conf.Oss.Bucket != "" {
		uploader = oss.NewUploader(
			config.Conf.Oss.Endpoint,
			config.Conf.Oss.Region,
			config.Conf.Oss.AccessKeyId,
			config.Conf.Oss.AccessKeySecret,
			config.Conf.Oss.Bucket,
		)
	} else {
		log.GetLogger().Info("oss bucket not configured, rendered clips stay local")
	}

	log.GetLogger().Info("service initialized",
		zap.String("llm_model", config.Conf.Llm.Model),
		zap.String("transcribe_model", config.Conf.Transcribe.Model))

	return &Service{
		Transcriber:   transcriber,
		ChatCompleter: chatCompleter,
		Uploader:      uploader,
		Renderer:      media.NewRenderer(config.Conf.App.TempDir),
	}
}
