package dispatch

import (
	"context"
	"fmt"
	"time"

	batchv1 "k8s.io/api/batch/v1"
	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
	typedbatchv1 "k8s.io/client-go/kubernetes/typed/batch/v1"
	"k8s.io/client-go/rest"
)

// JobTTLSeconds is how long the scheduler keeps a finished job around
// before reaping it.
const JobTTLSeconds = 30

// jobPollInterval is how often WaitForJob re-checks job status.
const jobPollInterval = time.Second

// KubeScheduler submits transcode jobs as Kubernetes batch Jobs in one
// namespace.
type KubeScheduler struct {
	jobs typedbatchv1.JobInterface
}

// NewKubeScheduler builds a scheduler from the in-cluster service account.
func NewKubeScheduler(namespace string) (*KubeScheduler, error) {
	config, err := rest.InClusterConfig()
	if err != nil {
		return nil, fmt.Errorf("loading in-cluster config: %w", err)
	}
	clientset, err := kubernetes.NewForConfig(config)
	if err != nil {
		return nil, fmt.Errorf("building kubernetes client: %w", err)
	}
	return &KubeScheduler{jobs: clientset.BatchV1().Jobs(namespace)}, nil
}

// NewKubeSchedulerForJobs wraps an existing typed job client; used to point
// the scheduler at a fake clientset.
func NewKubeSchedulerForJobs(jobs typedbatchv1.JobInterface) *KubeScheduler {
	return &KubeScheduler{jobs: jobs}
}

// CreateJob submits the job with its name as create-if-absent key. A
// conflicting name maps to ErrJobExists.
func (s *KubeScheduler) CreateJob(ctx context.Context, job JobDescriptor) error {
	ttl := int32(JobTTLSeconds)
	spec := &batchv1.Job{
		ObjectMeta: metav1.ObjectMeta{Name: job.Name},
		Spec: batchv1.JobSpec{
			TTLSecondsAfterFinished: &ttl,
			Template: corev1.PodTemplateSpec{
				Spec: corev1.PodSpec{
					RestartPolicy: corev1.RestartPolicyNever,
					Tolerations: []corev1.Toleration{{
						Key:    "type",
						Value:  "gpubackend",
						Effect: corev1.TaintEffectNoSchedule,
					}},
					Containers: []corev1.Container{{
						Name:            "encoder",
						Image:           job.Image,
						ImagePullPolicy: corev1.PullIfNotPresent,
						Args:            job.Args,
					}},
				},
			},
		},
	}

	_, err := s.jobs.Create(ctx, spec, metav1.CreateOptions{})
	if apierrors.IsAlreadyExists(err) {
		return ErrJobExists
	}
	if err != nil {
		return fmt.Errorf("creating job %s: %w", job.Name, err)
	}
	return nil
}

// WaitForJob polls the job until it succeeds, fails, or ctx expires.
func (s *KubeScheduler) WaitForJob(ctx context.Context, name string) error {
	ticker := time.NewTicker(jobPollInterval)
	defer ticker.Stop()

	for {
		job, err := s.jobs.Get(ctx, name, metav1.GetOptions{})
		if err == nil {
			if job.Status.Succeeded > 0 {
				return nil
			}
			if job.Status.Failed > 0 {
				return fmt.Errorf("job %s failed", name)
			}
		} else if !apierrors.IsNotFound(err) {
			return fmt.Errorf("polling job %s: %w", name, err)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
