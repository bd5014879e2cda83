package profiles

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/tkge-lab/tkgel/internal/config"
)

// Validate checks every profile section present in cfg for type, range and
// enum validity. All problems are collected and joined rather than stopping
// at the first.
func Validate(cfg *config.Config) error {
	var errs []error

	if cfg.Exists("train") {
		errs = append(errs, validateTrain(cfg)...)
	}
	if cfg.Exists("valid") {
		errs = append(errs, validateValid(cfg)...)
	}
	if cfg.Exists("eceformer") {
		errs = append(errs, validateEceformer(cfg)...)
	}
	if cfg.Exists("evokg") {
		errs = append(errs, validateEvokg(cfg)...)
	}
	if cfg.Exists("lookup_embedder") {
		errs = append(errs, validateLookupEmbedder(cfg)...)
	}

	return errors.Join(errs...)
}

func validateTrain(cfg *config.Config) []error {
	var errs []error

	errs = appendErr(errs, cfg.Check("train.type", "KvsAll", "negative_sampling", "1vsAll"))
	errs = appendErr(errs, cfg.Check("train.trace_level", "batch", "epoch"))
	errs = appendErr(errs, checkPositiveInt(cfg, "train.batch_size"))
	errs = appendErr(errs, checkPositiveInt(cfg, "train.max_epochs"))
	errs = appendErr(errs, checkPositiveInt(cfg, "train.update_freq"))
	errs = appendErr(errs, checkMinInt(cfg, "train.num_workers", 0))
	errs = appendErr(errs, checkMinInt(cfg, "train.checkpoint.every", 0))
	errs = appendErr(errs, checkMinInt(cfg, "train.checkpoint.keep", 0))
	return errs
}

func validateValid(cfg *config.Config) []error {
	var errs []error

	errs = appendErr(errs, cfg.Check("valid.trace_level", "batch", "epoch", "example"))
	errs = appendErr(errs, checkMinInt(cfg, "valid.every", 0))
	errs = appendErr(errs, checkMinInt(cfg, "valid.early_stopping.patience", 0))
	errs = appendErr(errs, checkMinInt(cfg, "valid.early_stopping.min_threshold.epochs", 0))
	if metric, err := cfg.GetString("valid.metric"); err != nil {
		errs = append(errs, err)
	} else if metric == "" {
		errs = append(errs, fmt.Errorf("valid.metric must not be empty"))
	}
	return errs
}

func validateEceformer(cfg *config.Config) []error {
	var errs []error

	errs = appendErr(errs, checkPositiveInt(cfg, "eceformer.dim"))
	errs = appendErr(errs, checkPositiveInt(cfg, "eceformer.feedforward_dim"))
	errs = appendErr(errs, checkPositiveInt(cfg, "eceformer.nhead"))
	errs = appendErr(errs, checkPositiveInt(cfg, "eceformer.nlayer"))
	errs = appendErr(errs, checkPositiveInt(cfg, "eceformer.max_context_size"))
	errs = appendErr(errs, cfg.CheckRange("eceformer.hidden_dropout", 0, 1))
	errs = appendErr(errs, cfg.CheckRange("eceformer.attn_dropout", 0, 1))
	errs = appendErr(errs, cfg.Check("eceformer.activation", "relu", "gelu"))
	errs = appendErr(errs, cfg.Check("eceformer.similarity", "dot", "cosine", "l2"))

	// Attention dims must split evenly across heads.
	dim, dimErr := cfg.GetInt("eceformer.dim")
	nhead, headErr := cfg.GetInt("eceformer.nhead")
	if dimErr == nil && headErr == nil && nhead > 0 && dim%nhead != 0 {
		errs = append(errs, fmt.Errorf(
			"eceformer.dim (%d) must be divisible by eceformer.nhead (%d)", dim, nhead))
	}

	for _, sub := range []string{"entity_embedder", "relation_embedder", "time_embedder"} {
		key := "eceformer." + sub + ".type"
		if cfg.Exists(key) {
			errs = appendErr(errs, cfg.Check(key, "lookup_embedder"))
		}
	}
	return errs
}

func validateEvokg(cfg *config.Config) []error {
	var errs []error

	errs = appendErr(errs, checkPositiveFloat(cfg, "evokg.lr"))
	errs = appendErr(errs, checkMinFloat(cfg, "evokg.weight_decay", 0))
	errs = appendErr(errs, cfg.CheckRange("evokg.dropout", 0, 1))
	errs = appendErr(errs, cfg.Check("evokg.optimize", "edge", "time", "both"))
	errs = appendErr(errs, checkPositiveInt(cfg, "evokg.static_entity_embed_dim"))
	errs = appendErr(errs, checkPositiveInt(cfg, "evokg.structural_dynamic_entity_embed_dim"))
	errs = appendErr(errs, checkPositiveInt(cfg, "evokg.temporal_dynamic_entity_embed_dim"))
	errs = appendErr(errs, checkPositiveInt(cfg, "evokg.rel_embed_dim"))
	errs = appendErr(errs, checkPositiveInt(cfg, "evokg.num_gconv_layers"))
	errs = appendErr(errs, checkPositiveInt(cfg, "evokg.num_rnn_layers"))
	errs = appendErr(errs, checkPositiveInt(cfg, "evokg.num_mix_components"))
	errs = appendErr(errs, checkPositiveInt(cfg, "evokg.rnn_truncate_every"))
	errs = appendErr(errs, cfg.Check("evokg.static_dynamic_combine_mode",
		"concat", "static_only", "dynamic_only"))
	errs = appendErr(errs, cfg.Check("evokg.combiner_activation", "tanh", "relu", "none"))
	errs = appendErr(errs, cfg.Check("evokg.inter_event_time_mode",
		"min_inter_event_times", "mean_inter_event_times"))

	if graph, err := cfg.GetString("evokg.graph"); err != nil {
		errs = append(errs, err)
	} else if graph == "" {
		errs = append(errs, fmt.Errorf("evokg.graph must not be empty"))
	}

	// The updater gconv fields are null when the corresponding aspect is
	// disabled; static_only requires both to be off.
	for _, key := range []string{
		"evokg.embedding_updater_structural_gconv",
		"evokg.embedding_updater_temporal_gconv",
	} {
		v, err := cfg.Get(key)
		if err != nil || v == nil {
			continue
		}
		errs = appendErr(errs, cfg.Check(key, "RGCN", "RGCN+"))
	}
	if mode, err := cfg.GetString("evokg.static_dynamic_combine_mode"); err == nil && mode == "static_only" {
		for _, key := range []string{
			"evokg.embedding_updater_structural_gconv",
			"evokg.embedding_updater_temporal_gconv",
		} {
			if v, err := cfg.Get(key); err == nil && v != nil {
				errs = append(errs, fmt.Errorf(
					"%s must be null when static_dynamic_combine_mode is static_only, got %v", key, v))
			}
		}
	}
	return errs
}

func validateLookupEmbedder(cfg *config.Config) []error {
	var errs []error

	errs = appendErr(errs, checkPositiveInt(cfg, "lookup_embedder.dim"))
	errs = appendErr(errs, cfg.Check("lookup_embedder.initialize",
		"normal_", "uniform_", "xavier_normal_", "xavier_uniform_"))
	errs = appendErr(errs, cfg.Check("lookup_embedder.regularize", "", "lp"))
	errs = appendErr(errs, checkMinFloat(cfg, "lookup_embedder.regularize_weight", 0))
	errs = appendErr(errs, checkPositiveInt(cfg, "lookup_embedder.gcn_layers"))
	errs = appendErr(errs, cfg.CheckRange("lookup_embedder.gcn_dropout", 0, 1))

	// Negative dropout is a tuning artifact; it is only acceptable when
	// train.auto_correct will zero it at load time.
	if dropout, err := cfg.GetFloat("lookup_embedder.dropout"); err != nil {
		errs = append(errs, err)
	} else if dropout < 0 || dropout > 1 {
		auto, _ := cfg.GetBool("train.auto_correct")
		if dropout > 1 || !auto {
			errs = append(errs, fmt.Errorf(
				"lookup_embedder.dropout must be between 0 and 1, got %g", dropout))
		}
	}
	return errs
}

// AutoCorrect applies the trainer's auto-corrections when train.auto_correct
// is set: a negative lookup_embedder.dropout becomes 0. Corrections are
// logged the way the original embedder logs them.
func AutoCorrect(cfg *config.Config, log *slog.Logger) error {
	auto, err := cfg.GetBool("train.auto_correct")
	if err != nil || !auto {
		return nil
	}
	dropout, err := cfg.GetFloat("lookup_embedder.dropout")
	if err != nil {
		return nil
	}
	if dropout < 0 {
		if err := cfg.Set("lookup_embedder.dropout", 0.0); err != nil {
			return err
		}
		if log != nil {
			log.Info("setting lookup_embedder.dropout to 0", "was", dropout)
		}
	}
	return nil
}

func appendErr(errs []error, err error) []error {
	if err != nil {
		errs = append(errs, err)
	}
	return errs
}

func checkPositiveInt(cfg *config.Config, key string) error {
	v, err := cfg.GetInt(key)
	if err != nil {
		return err
	}
	if v <= 0 {
		return fmt.Errorf("%s must be positive, got %d", key, v)
	}
	return nil
}

func checkMinInt(cfg *config.Config, key string, min int) error {
	v, err := cfg.GetInt(key)
	if err != nil {
		return err
	}
	if v < min {
		return fmt.Errorf("%s must be at least %d, got %d", key, min, v)
	}
	return nil
}

func checkPositiveFloat(cfg *config.Config, key string) error {
	v, err := cfg.GetFloat(key)
	if err != nil {
		return err
	}
	if v <= 0 {
		return fmt.Errorf("%s must be positive, got %g", key, v)
	}
	return nil
}

func checkMinFloat(cfg *config.Config, key string, min float64) error {
	v, err := cfg.GetFloat(key)
	if err != nil {
		return err
	}
	if v < min {
		return fmt.Errorf("%s must be at least %g, got %g", key, min, v)
	}
	return nil
}
