// Package reconcile repairs drift between the profile_likes edge sets and the
// denormalized likesReceived counters. The toggle path never runs this; it is
// an optional background sweep for deployments that want the partial-failure
// window closed eventually instead of living with it.
package reconcile

import (
	"context"
	"log"
	"sync"
	"time"

	"apexgarage/internal/docstore"
	"apexgarage/internal/repository"
)

const (
	// DefaultInterval is how often the sweep runs when enabled.
	DefaultInterval = 15 * time.Minute
)

// Reconciler periodically recounts like edges per profile and applies one
// corrective atomic increment when the stored counter disagrees.
type Reconciler struct {
	store       docstore.Store
	likeRepo    repository.LikeRepository
	profileRepo repository.ProfileRepository
	interval    time.Duration

	wg     sync.WaitGroup
	cancel context.CancelFunc
}

func NewReconciler(store docstore.Store, likeRepo repository.LikeRepository, profileRepo repository.ProfileRepository, interval time.Duration) *Reconciler {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Reconciler{
		store:       store,
		likeRepo:    likeRepo,
		profileRepo: profileRepo,
		interval:    interval,
	}
}

// Start launches the sweep loop. Call Stop to shut down gracefully.
func (r *Reconciler) Start(ctx context.Context) {
	ctx, r.cancel = context.WithCancel(ctx)

	log.Printf("[Reconciler] Starting, interval=%v", r.interval)

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()

		ticker := time.NewTicker(r.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if repaired, err := r.RunOnce(ctx); err != nil {
					log.Printf("[Reconciler] Sweep failed: %v", err)
				} else if repaired > 0 {
					log.Printf("[Reconciler] Sweep repaired %d counter(s)", repaired)
				}
			}
		}
	}()
}

// Stop shuts the loop down and blocks until it has finished.
func (r *Reconciler) Stop() {
	if r.cancel != nil {
		r.cancel()
	}
	r.wg.Wait()
	log.Printf("[Reconciler] Stopped")
}

// RunOnce sweeps every profile and returns how many counters it repaired.
func (r *Reconciler) RunOnce(ctx context.Context) (int, error) {
	// All profile documents carry createdAt, so an open-ended range on it
	// enumerates the collection.
	docs, err := r.store.QueryByField(ctx, repository.ProfilesCollection, "createdAt", docstore.Range{GTE: ""}, 0)
	if err != nil {
		return 0, err
	}

	repaired := 0
	for i := range docs {
		userID := docs[i].ID

		actual, err := r.likeRepo.CountForTarget(ctx, userID)
		if err != nil {
			log.Printf("[Reconciler] Failed to count likes for user=%s: %v", userID, err)
			continue
		}

		profile, err := r.profileRepo.GetByID(ctx, userID)
		if err != nil {
			log.Printf("[Reconciler] Failed to load profile user=%s: %v", userID, err)
			continue
		}

		drift := actual - profile.Stats.LikesReceived
		if drift == 0 {
			continue
		}

		// The counter may have legitimately moved since the recount; the
		// corrective delta rides the same atomic increment as the hot path,
		// so a concurrent like is not clobbered, only re-examined next sweep.
		if err := r.profileRepo.IncrementLikesReceived(ctx, userID, drift); err != nil {
			log.Printf("[Reconciler] Failed to repair counter user=%s drift=%d: %v", userID, drift, err)
			continue
		}

		log.Printf("[Reconciler] Repaired likesReceived user=%s drift=%d", userID, drift)
		repaired++
	}

	return repaired, nil
}
