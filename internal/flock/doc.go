// Package flock provides cross-platform exclusive file locks.
//
// Exclusive and Unlock are the non-blocking platform primitives. Acquire
// wraps them with a retry loop so a batch can wait briefly for another
// batch to release the scenarios root:
//
//	lock, err := flock.Acquire(ctx, filepath.Join(root, ".qaforge.lock"), 2*time.Second)
//	if err != nil {
//	    return err // errors.ErrRootLocked when another run holds it
//	}
//	defer lock.Release()
package flock
